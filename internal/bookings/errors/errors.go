package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrInvalidState means the booking exists but its status no longer allows the
	// requested transition.
	ErrInvalidState = errors.New("booking status does not allow this transition")

	ErrResourceNotFound = errors.New("resource not found")

	ErrInvalidResourceID = errors.New("invalid resource ID format")
)
