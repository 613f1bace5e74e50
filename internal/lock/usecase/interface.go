// Package usecase implements per-record mutual exclusion on top of a lock repository.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

// LockRepository defines the persistence operations a lock backend must provide. TryAcquire
// must insert-or-take-over atomically and report false when an unexpired lock exists.
type LockRepository interface {
	TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error)
	Release(ctx context.Context, lockID string, token uuid.UUID) error
	Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error)
	List(ctx context.Context) ([]*lockDomain.ProcessingLock, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LockUseCase defines the lock manager operations used by the pipeline and the CLI.
type LockUseCase interface {
	// Acquire returns ErrAlreadyLocked when another unexpired lock exists for recordID.
	Acquire(ctx context.Context, recordID string, ttl time.Duration, metadata map[string]string) (*lockDomain.ProcessingLock, error)
	// Release is idempotent and never frees a lock re-acquired by someone else.
	Release(ctx context.Context, lock *lockDomain.ProcessingLock) error
	List(ctx context.Context) ([]*lockDomain.ProcessingLock, error)
	Sweep(ctx context.Context) (int64, error)
}
