package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/reelcast/internal/errors"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

type lockUseCase struct {
	repo   LockRepository
	holder string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a lock use case.
type Option func(*lockUseCase)

// WithClock overrides the time source used for acquisition and expiry.
func WithClock(now func() time.Time) Option {
	return func(u *lockUseCase) {
		u.now = now
	}
}

// NewLockUseCase creates a lock manager that acquires locks on behalf of holder.
func NewLockUseCase(repo LockRepository, holder string, logger *slog.Logger, opts ...Option) LockUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	u := &lockUseCase{
		repo:   repo,
		holder: holder,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *lockUseCase) Acquire(
	ctx context.Context,
	recordID string,
	ttl time.Duration,
	metadata map[string]string,
) (*lockDomain.ProcessingLock, error) {
	if ttl <= 0 {
		return nil, lockDomain.ErrInvalidTTL
	}
	if recordID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "lock id is required")
	}

	now := u.now()
	lock := &lockDomain.ProcessingLock{
		LockID:     recordID,
		Holder:     u.holder,
		Token:      uuid.New(),
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
		Metadata:   metadata,
	}

	acquired, err := u.repo.TryAcquire(ctx, lock)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, lockDomain.ErrAlreadyLocked
	}

	u.logger.Debug("lock acquired", slog.String("record_id", recordID), slog.Time("expires_at", lock.ExpiresAt))
	return lock, nil
}

func (u *lockUseCase) Release(ctx context.Context, lock *lockDomain.ProcessingLock) error {
	if lock == nil {
		return nil
	}
	if err := u.repo.Release(ctx, lock.LockID, lock.Token); err != nil {
		return err
	}

	u.logger.Debug("lock released", slog.String("record_id", lock.LockID))
	return nil
}

func (u *lockUseCase) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
	return u.repo.List(ctx)
}

// Sweep removes expired lock rows. Correctness never depends on it since expired locks
// are taken over on acquisition.
func (u *lockUseCase) Sweep(ctx context.Context) (int64, error) {
	removed, err := u.repo.DeleteExpired(ctx, u.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		u.logger.Info("expired locks swept", slog.Int64("count", removed))
	}
	return removed, nil
}
