package errors

import "errors"

var (
	ErrNotFound        = errors.New("payment not found")
	ErrInvalidID       = errors.New("invalid payment id")
	ErrDuplicatePeriod = errors.New("payment already exists for billing period")
	ErrStatusConflict  = errors.New("payment status changed concurrently")
)
