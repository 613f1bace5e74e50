package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

// MemoryAuditRepository keeps events in process memory. Used with the memory database driver.
type MemoryAuditRepository struct {
	mu     sync.RWMutex
	events []*auditDomain.Event
}

// NewMemoryAuditRepository creates an empty MemoryAuditRepository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

// Create appends a copy of event.
func (r *MemoryAuditRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *event
	r.events = append(r.events, &stored)
	sort.SliceStable(r.events, func(i, j int) bool {
		return r.events[i].Timestamp.Before(r.events[j].Timestamp)
	})
	return nil
}

// List returns events ordered oldest first within the optional inclusive time range.
func (r *MemoryAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*auditDomain.Event, 0)
	skipped := 0
	for _, event := range r.events {
		if from != nil && event.Timestamp.Before(*from) {
			continue
		}
		if to != nil && event.Timestamp.After(*to) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(events) == limit {
			break
		}
		stored := *event
		events = append(events, &stored)
	}
	return events, nil
}

// DeleteOlderThan removes events created before cutoff, or only counts them when dryRun is set.
func (r *MemoryAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0:0]
	var count int64
	for _, event := range r.events {
		if event.Timestamp.Before(cutoff) {
			count++
			continue
		}
		kept = append(kept, event)
	}
	if !dryRun {
		r.events = kept
	}
	return count, nil
}
