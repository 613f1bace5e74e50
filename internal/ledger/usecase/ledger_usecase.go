package usecase

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/allisson/reelcast/internal/errors"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

type ledgerUseCase struct {
	repo      LedgerRepository
	processor string
	now       func() time.Time
	logger    *slog.Logger
}

// NewLedgerUseCase creates a ledger that records entries as written by processor.
func NewLedgerUseCase(repo LedgerRepository, processor string, logger *slog.Logger) LedgerUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerUseCase{
		repo:      repo,
		processor: processor,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// HasProcessed always reads the store so entries forgotten by another process are seen
// on the next check.
func (u *ledgerUseCase) HasProcessed(ctx context.Context, recordID string) (bool, error) {
	_, err := u.repo.Get(ctx, recordID)
	if err == nil {
		return true, nil
	}
	if apperrors.Is(err, ledgerDomain.ErrEntryNotFound) {
		return false, nil
	}
	return false, apperrors.Join(ledgerDomain.ErrLedgerUnavailable, err)
}

func (u *ledgerUseCase) MarkProcessed(ctx context.Context, recordID string, summary map[string]string) error {
	entry := &ledgerDomain.IdempotencyEntry{
		RecordID:      recordID,
		ProcessedAt:   u.now(),
		ProcessedBy:   u.processor,
		ResultSummary: summary,
	}
	if err := u.repo.Insert(ctx, entry); err != nil {
		return apperrors.Join(ledgerDomain.ErrLedgerUnavailable, err)
	}

	u.logger.Debug("ledger entry written", slog.String("record_id", recordID))
	return nil
}

func (u *ledgerUseCase) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	return u.repo.Get(ctx, recordID)
}

func (u *ledgerUseCase) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	return u.repo.List(ctx, offset, limit)
}

// Forget deletes the entry so the record becomes eligible in the next cycle.
func (u *ledgerUseCase) Forget(ctx context.Context, recordID string) (bool, error) {
	deleted, err := u.repo.Delete(ctx, recordID)
	if err != nil {
		return false, err
	}

	if deleted {
		u.logger.Info("ledger entry forgotten", slog.String("record_id", recordID))
	}
	return deleted, nil
}
