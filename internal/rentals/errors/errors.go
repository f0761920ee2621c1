package errors

import "errors"

var (
	ErrNotFound       = errors.New("rental not found")
	ErrInvalidID      = errors.New("invalid rental id")
	ErrStatusConflict = errors.New("rental status changed concurrently")
)
