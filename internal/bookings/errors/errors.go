package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrStatusChanged is returned by conditional status updates when the
	// booking is no longer in the expected state.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrLockHeld = errors.New("room lock is held by another request")
)
