package domain

import (
	"github.com/allisson/reelcast/internal/errors"
)

// Lock errors.
var (
	// ErrAlreadyLocked indicates another holder owns an unexpired lock. Benign skip.
	ErrAlreadyLocked = errors.Wrap(errors.ErrConflict, "record already locked")

	// ErrLockNotFound indicates no lock row exists for the id.
	ErrLockNotFound = errors.Wrap(errors.ErrNotFound, "lock not found")

	// ErrInvalidTTL indicates a non-positive TTL was requested.
	ErrInvalidTTL = errors.Wrap(errors.ErrInvalidInput, "lock ttl must be positive")
)
