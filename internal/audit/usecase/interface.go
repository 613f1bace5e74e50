// Package usecase implements the per-cycle audit buffer and the durable, signed audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Create(ctx context.Context, event *auditDomain.Event) error
	List(ctx context.Context, offset, limit int, from, to *time.Time) ([]*auditDomain.Event, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error)
}

// AuditLogger is the append-only in-memory event buffer for one cycle.
type AuditLogger interface {
	// StartRun tags subsequent events with runID and resets the summary start time.
	// Buffered events are kept.
	StartRun(runID uuid.UUID)
	RunID() uuid.UUID
	Log(ctx context.Context, event auditDomain.Event) auditDomain.Event
	Info(ctx context.Context, category, recordID, message string, details map[string]any)
	Success(ctx context.Context, category, recordID, message string, details map[string]any)
	Warn(ctx context.Context, category, recordID, message string, details map[string]any)
	Error(ctx context.Context, category, recordID, message string, details map[string]any)
	Skip(ctx context.Context, category, recordID, message string, details map[string]any)
	Events() []auditDomain.Event
	Summary() *auditDomain.Summary
	Clear()
}

// VerificationReport is the outcome of checking stored signatures.
type VerificationReport struct {
	TotalChecked  int64       `json:"total_checked"`
	SignedCount   int64       `json:"signed_count"`
	UnsignedCount int64       `json:"unsigned_count"`
	ValidCount    int64       `json:"valid_count"`
	InvalidCount  int64       `json:"invalid_count"`
	InvalidEvents []uuid.UUID `json:"invalid_events"`
}

// AuditUseCase manages the durable audit trail.
type AuditUseCase interface {
	// Persist appends events in one transaction, signing them when a signer is configured.
	Persist(ctx context.Context, events []auditDomain.Event) (int, error)
	List(ctx context.Context, offset, limit int, from, to *time.Time) ([]*auditDomain.Event, error)
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
