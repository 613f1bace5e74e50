package domain

import (
	"github.com/allisson/reelcast/internal/errors"
)

// Ledger errors.
var (
	// ErrEntryNotFound indicates the record has no ledger entry.
	ErrEntryNotFound = errors.Wrap(errors.ErrNotFound, "ledger entry not found")

	// ErrLedgerUnavailable indicates the ledger store could not be read or written.
	// The pipeline treats it as a per-record error and never as "not processed".
	ErrLedgerUnavailable = errors.Wrap(errors.ErrUnavailable, "idempotency ledger unavailable")
)
