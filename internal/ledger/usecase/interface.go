// Package usecase implements the idempotency ledger: durable "already processed" checks
// fronted by a same-process cache.
package usecase

import (
	"context"

	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// LedgerRepository defines the persistence operations of the ledger store.
type LedgerRepository interface {
	// Insert must be append-only: an existing entry for the record is left untouched.
	Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error
	Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error)
	List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error)
	Delete(ctx context.Context, recordID string) (bool, error)
}

// LedgerUseCase defines the ledger operations used by the pipeline and the CLI.
type LedgerUseCase interface {
	// HasProcessed reports whether the record has an entry. A store failure returns
	// ErrLedgerUnavailable and never false.
	HasProcessed(ctx context.Context, recordID string) (bool, error)
	MarkProcessed(ctx context.Context, recordID string, summary map[string]string) error
	Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error)
	List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error)
	Forget(ctx context.Context, recordID string) (bool, error)
}
