package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	auditService "github.com/allisson/reelcast/internal/audit/service"
	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// verifyBatchSize bounds how many events VerifyBatch loads per query.
const verifyBatchSize = 500

type auditUseCase struct {
	txManager database.TxManager
	repo      AuditRepository
	signer    auditService.EventSigner
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuditUseCase creates the audit trail use case. A nil signer stores events unsigned
// and makes VerifyBatch fail with ErrSigningKeyMissing.
func NewAuditUseCase(
	txManager database.TxManager,
	repo AuditRepository,
	signer auditService.EventSigner,
	logger *slog.Logger,
) AuditUseCase {
	return &auditUseCase{
		txManager: txManager,
		repo:      repo,
		signer:    signer,
		logger:    logger,
		now:       time.Now,
	}
}

func (a *auditUseCase) Persist(ctx context.Context, events []auditDomain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	prepared := make([]*auditDomain.Event, 0, len(events))
	for _, event := range events {
		event.Timestamp = event.Timestamp.UTC().Truncate(time.Millisecond)
		if a.signer != nil {
			signature, err := a.signer.Sign(&event)
			if err != nil {
				return 0, apperrors.Wrap(err, "failed to sign audit event")
			}
			event.Signature = signature
		}
		prepared = append(prepared, &event)
	}

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, event := range prepared {
			if err := a.repo.Create(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to persist audit events")
	}
	return len(prepared), nil
}

func (a *auditUseCase) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	events, err := a.repo.List(ctx, offset, limit, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// VerifyBatch checks every event created in [start, end]. Unsigned events are counted
// but not treated as invalid.
func (a *auditUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	if a.signer == nil {
		return nil, auditDomain.ErrSigningKeyMissing
	}

	report := &VerificationReport{InvalidEvents: []uuid.UUID{}}
	for offset := 0; ; offset += verifyBatchSize {
		events, err := a.repo.List(ctx, offset, verifyBatchSize, &start, &end)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit events")
		}

		for _, event := range events {
			report.TotalChecked++
			if !event.IsSigned() {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++
			if err := a.signer.Verify(event); err != nil {
				report.InvalidCount++
				report.InvalidEvents = append(report.InvalidEvents, event.ID)
				a.logger.Warn("audit event failed verification",
					slog.String("event_id", event.ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			report.ValidCount++
		}

		if len(events) < verifyBatchSize {
			return report, nil
		}
	}
}

func (a *auditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must not be negative")
	}

	cutoff := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.repo.DeleteOlderThan(ctx, cutoff, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return count, nil
}
