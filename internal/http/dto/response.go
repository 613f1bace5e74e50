// Package dto provides the JSON shapes served by the status server.
package dto

import (
	"time"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

// LedgerEntryResponse represents one idempotency ledger entry.
type LedgerEntryResponse struct {
	RecordID      string            `json:"record_id"`
	ProcessedAt   time.Time         `json:"processed_at"`
	ProcessedBy   string            `json:"processed_by"`
	ResultSummary map[string]string `json:"result_summary,omitempty"`
}

// MapLedgerEntryToResponse converts a ledger entry to its API shape.
func MapLedgerEntryToResponse(entry *ledgerDomain.IdempotencyEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		RecordID:      entry.RecordID,
		ProcessedAt:   entry.ProcessedAt,
		ProcessedBy:   entry.ProcessedBy,
		ResultSummary: entry.ResultSummary,
	}
}

// LockResponse represents a processing lock. The token is never exposed.
type LockResponse struct {
	RecordID   string            `json:"record_id"`
	Holder     string            `json:"holder"`
	AcquiredAt time.Time         `json:"acquired_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Expired    bool              `json:"expired"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// MapLockToResponse converts a lock to its API shape, flagging it expired at now.
func MapLockToResponse(lock *lockDomain.ProcessingLock, now time.Time) LockResponse {
	return LockResponse{
		RecordID:   lock.LockID,
		Holder:     lock.Holder,
		AcquiredAt: lock.AcquiredAt,
		ExpiresAt:  lock.ExpiresAt,
		Expired:    lock.IsExpired(now),
		Metadata:   lock.Metadata,
	}
}

// AuditEventResponse represents a persisted audit event.
type AuditEventResponse struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	RecordID  string         `json:"record_id,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Signed    bool           `json:"signed"`
}

// MapAuditEventToResponse converts an audit event to its API shape.
func MapAuditEventToResponse(event *auditDomain.Event) AuditEventResponse {
	return AuditEventResponse{
		ID:        event.ID.String(),
		RunID:     event.RunID.String(),
		Timestamp: event.Timestamp,
		Level:     string(event.Level),
		Category:  event.Category,
		RecordID:  event.RecordID,
		Message:   event.Message,
		Details:   event.Details,
		Signed:    event.IsSigned(),
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// MapList converts items with mapper into a list response. The data array is never null.
func MapList[S any, T any](items []S, mapper func(S) T) ListResponse[T] {
	data := make([]T, 0, len(items))
	for _, item := range items {
		data = append(data, mapper(item))
	}
	return ListResponse[T]{Data: data}
}
