package domain

import (
	"net/http"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

// Distribution errors.
var (
	// ErrInvalidPolicy indicates an unknown distribution policy name.
	ErrInvalidPolicy = apperrors.Wrap(apperrors.ErrInvalidInput, "distribution policy must be any or all")

	// ErrInvalidPlatformConfig indicates a platform definition that fails validation.
	ErrInvalidPlatformConfig = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid platform configuration")

	// ErrUnknownPlatformKind indicates a platform kind with no adapter.
	ErrUnknownPlatformKind = apperrors.Wrap(apperrors.ErrInvalidInput, "unknown platform kind")

	// ErrNoPlatforms indicates distribution was requested with nothing configured.
	ErrNoPlatforms = apperrors.Wrap(apperrors.ErrInvalidInput, "no distribution platforms configured")
)

// RetryableError marks a failure that may succeed if the same post is repeated.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// TerminalError marks a failure that repeating the post cannot fix.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string { return e.Err.Error() }

func (e *TerminalError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Terminal wraps err as a TerminalError.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// IsRetryable reports whether err is marked retryable. Unmarked errors are terminal.
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return apperrors.As(err, &retryable)
}

// RetryableStatus reports whether an HTTP status is worth retrying: throttling,
// request timeouts and server errors.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooEarly, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return code != http.StatusNotImplemented && code != http.StatusHTTPVersionNotSupported
	default:
		return false
	}
}
