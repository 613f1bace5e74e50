package repository

import (
	"context"
	"maps"
	"sort"
	"sync"

	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// MemoryLedgerRepository keeps entries in process memory for dry runs and tests.
type MemoryLedgerRepository struct {
	mu      sync.RWMutex
	entries map[string]ledgerDomain.IdempotencyEntry
}

// NewMemoryLedgerRepository creates an empty MemoryLedgerRepository.
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{entries: make(map[string]ledgerDomain.IdempotencyEntry)}
}

// Insert appends an entry unless one already exists.
func (r *MemoryLedgerRepository) Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.RecordID]; ok {
		return nil
	}
	stored := *entry
	stored.ResultSummary = maps.Clone(entry.ResultSummary)
	r.entries[entry.RecordID] = stored
	return nil
}

// Get retrieves the entry for a record.
func (r *MemoryLedgerRepository) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[recordID]
	if !ok {
		return nil, ledgerDomain.ErrEntryNotFound
	}
	return &entry, nil
}

// List returns entries ordered by processing time, newest first.
func (r *MemoryLedgerRepository) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*ledgerDomain.IdempotencyEntry, 0, len(r.entries))
	for _, existing := range r.entries {
		entry := existing
		entries = append(entries, &entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProcessedAt.Equal(entries[j].ProcessedAt) {
			return entries[i].RecordID < entries[j].RecordID
		}
		return entries[i].ProcessedAt.After(entries[j].ProcessedAt)
	})

	if offset >= len(entries) {
		return []*ledgerDomain.IdempotencyEntry{}, nil
	}
	end := min(offset+limit, len(entries))
	return entries[offset:end], nil
}

// Delete removes the entry for a record.
func (r *MemoryLedgerRepository) Delete(ctx context.Context, recordID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[recordID]; !ok {
		return false, nil
	}
	delete(r.entries, recordID)
	return true, nil
}
