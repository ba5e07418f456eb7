package domain

import "errors"

var (
	// ErrEventNotFound is returned when the referenced outbox event does
	// not exist in the database
	ErrEventNotFound = errors.New("outbox event not found")

	// ErrInvalidMessage is returned when a queue message body is malformed
	ErrInvalidMessage = errors.New("invalid event message")

	// ErrMaxDeliveriesExceeded is returned when an event has been
	// attempted too many times
	ErrMaxDeliveriesExceeded = errors.New("max delivery attempts exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
