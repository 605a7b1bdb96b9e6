package store

import (
	"errors"
	"fmt"
)

// ErrAuthRequired means no authenticated user is attached to the call. It
// blocks every mutation.
var ErrAuthRequired = errors.New("authentication required")

// ErrNotFound means the referenced task is absent from the local cache at
// call time. Callers treat it as a no-op, not a fatal condition.
var ErrNotFound = errors.New("task not found")

// RemoteError wraps a persistence failure. The message is safe to surface to
// the user; the wrapped error carries the store's own detail.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}

// ValidationError reports malformed input caught before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
