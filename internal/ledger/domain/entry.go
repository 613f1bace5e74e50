// Package domain defines the durable idempotency ledger that records which records have
// been fully distributed.
package domain

import "time"

// IdempotencyEntry marks a record as processed. Entries are append-only: once written
// they are never updated, only deleted by an explicit operator action.
type IdempotencyEntry struct {
	RecordID      string
	ProcessedAt   time.Time
	ProcessedBy   string
	ResultSummary map[string]string
}
