// Package domain defines per-record processing locks used for mutual exclusion
// across overlapping pipeline executions.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingLock is a TTL-bound mutual-exclusion marker for one record.
// At most one unexpired lock exists per LockID; an expired lock is treated as absent.
type ProcessingLock struct {
	// LockID equals the record id.
	LockID string
	// Holder identifies the process instance that acquired the lock.
	Holder string
	// Token distinguishes this acquisition from any later re-acquisition of the same LockID.
	Token      uuid.UUID
	AcquiredAt time.Time
	ExpiresAt  time.Time
	Metadata   map[string]string
}

// IsExpired reports whether the lock no longer excludes other holders at now.
func (l *ProcessingLock) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
