// Package errors provides standardized domain errors that express pipeline intent
// rather than infrastructure details. Domain packages wrap these sentinels in their own
// errors.go so callers can branch with errors.Is on either the specific or the base error.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing state (e.g., a lock held by someone else).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates a collaborator (source, store, upstream API) cannot be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrTimeout indicates an operation did not finish within its allotted time.
	ErrTimeout = errors.New("timeout")

	// ErrFailed indicates an upstream reported a terminal failure.
	ErrFailed = errors.New("failed")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
