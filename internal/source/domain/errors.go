package domain

import (
	"github.com/allisson/reelcast/internal/errors"
)

// Source errors.
var (
	// ErrSourceUnavailable indicates the source could not be reached or parsed. Fatal to the cycle.
	ErrSourceUnavailable = errors.Wrap(errors.ErrUnavailable, "source unavailable")

	// ErrSourceMalformed indicates no row satisfies the minimum schema. Fatal to the cycle.
	ErrSourceMalformed = errors.Wrap(errors.ErrInvalidInput, "source malformed")

	// ErrWritebackFailure indicates one or more writeback cells could not be written.
	ErrWritebackFailure = errors.Wrap(errors.ErrFailed, "writeback failure")
)
