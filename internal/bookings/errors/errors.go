package errors

import "errors"

var (
	ErrNotFound       = errors.New("booking not found")
	ErrInvalidID      = errors.New("invalid booking id")
	ErrStatusConflict = errors.New("booking status changed concurrently")
	ErrDuplicateLock  = errors.New("booking lock already held")
)
