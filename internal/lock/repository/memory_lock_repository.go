package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

// MemoryLockRepository keeps locks in process memory. It only excludes executions within
// the same process and is meant for dry runs and tests.
type MemoryLockRepository struct {
	mu    sync.Mutex
	locks map[string]lockDomain.ProcessingLock
}

// NewMemoryLockRepository creates an empty MemoryLockRepository.
func NewMemoryLockRepository() *MemoryLockRepository {
	return &MemoryLockRepository{locks: make(map[string]lockDomain.ProcessingLock)}
}

// TryAcquire stores the lock unless an unexpired one exists.
func (r *MemoryLockRepository) TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.locks[lock.LockID]; ok && !existing.IsExpired(lock.AcquiredAt) {
		return false, nil
	}

	stored := *lock
	stored.Metadata = maps.Clone(lock.Metadata)
	r.locks[lock.LockID] = stored
	return true, nil
}

// Release deletes the lock when the token matches.
func (r *MemoryLockRepository) Release(ctx context.Context, lockID string, token uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.locks[lockID]; ok && existing.Token == token {
		delete(r.locks, lockID)
	}
	return nil
}

// Get retrieves a lock by id.
func (r *MemoryLockRepository) Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.locks[lockID]
	if !ok {
		return nil, lockDomain.ErrLockNotFound
	}
	return &existing, nil
}

// List returns every lock ordered by acquisition time.
func (r *MemoryLockRepository) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locks := make([]*lockDomain.ProcessingLock, 0, len(r.locks))
	for _, existing := range r.locks {
		lock := existing
		locks = append(locks, &lock)
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].AcquiredAt.Before(locks[j].AcquiredAt) })
	return locks, nil
}

// DeleteExpired removes locks expired at now.
func (r *MemoryLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, existing := range r.locks {
		if existing.IsExpired(now) {
			delete(r.locks, id)
			removed++
		}
	}
	return removed, nil
}
