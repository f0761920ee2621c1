package kafka

import "errors"

var (
	// ErrProducerClosed indicates the producer has been closed.
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrEmptyKey indicates the message key is empty.
	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue indicates the message value is empty.
	ErrEmptyValue = errors.New("message value cannot be empty")

	// ErrInvalidMessage indicates the message is invalid.
	ErrInvalidMessage = errors.New("invalid message")
)
