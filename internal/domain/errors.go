package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrHabitNotFound is returned when a habit cannot be located for the caller.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrUnauthenticated indicates an operation that requires a user was called without one.
	ErrUnauthenticated = errors.New("no authenticated user")
)

// ValidationError reports a rejected habit definition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failed data-store operation. The ledger performs no
// retries; the cause propagates to the caller as-is.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}
