package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

// MySQLLockRepository implements lock persistence for MySQL. The DSN must set parseTime=true.
type MySQLLockRepository struct {
	db *sql.DB
}

// NewMySQLLockRepository creates a new MySQLLockRepository.
func NewMySQLLockRepository(db *sql.DB) *MySQLLockRepository {
	return &MySQLLockRepository{db: db}
}

// TryAcquire inserts the lock or takes over an expired row. MySQL reports 1 affected row
// for an insert, 2 for a takeover and 0 when the existing unexpired row was left untouched.
// expires_at is assigned last because MySQL evaluates assignments left to right.
func (r *MySQLLockRepository) TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	metadata, err := encodeMetadata(lock.Metadata)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO processing_locks (lock_id, holder, token, acquired_at, expires_at, metadata)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				  holder = IF(expires_at <= VALUES(acquired_at), VALUES(holder), holder),
				  token = IF(expires_at <= VALUES(acquired_at), VALUES(token), token),
				  metadata = IF(expires_at <= VALUES(acquired_at), VALUES(metadata), metadata),
				  acquired_at = IF(expires_at <= VALUES(acquired_at), VALUES(acquired_at), acquired_at),
				  expires_at = IF(expires_at <= VALUES(acquired_at), VALUES(expires_at), expires_at)`

	result, err := querier.ExecContext(
		ctx,
		query,
		lock.LockID,
		lock.Holder,
		lock.Token.String(),
		lock.AcquiredAt,
		lock.ExpiresAt,
		metadata,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to acquire lock")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read lock rows affected")
	}
	return affected > 0, nil
}

// Release deletes the lock only when the token still matches.
func (r *MySQLLockRepository) Release(ctx context.Context, lockID string, token uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM processing_locks WHERE lock_id = ? AND token = ?`

	if _, err := querier.ExecContext(ctx, query, lockID, token.String()); err != nil {
		return apperrors.Wrap(err, "failed to release lock")
	}
	return nil
}

// Get retrieves a lock row by id, expired or not.
func (r *MySQLLockRepository) Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT lock_id, holder, token, acquired_at, expires_at, metadata
			  FROM processing_locks WHERE lock_id = ?`

	lock, err := scanLock(querier.QueryRowContext(ctx, query, lockID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lockDomain.ErrLockNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get lock")
	}
	return lock, nil
}

// List returns every lock row ordered by acquisition time.
func (r *MySQLLockRepository) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT lock_id, holder, token, acquired_at, expires_at, metadata
			  FROM processing_locks ORDER BY acquired_at ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list locks")
	}
	return collectLocks(rows)
}

// DeleteExpired removes lock rows that expired at or before now.
func (r *MySQLLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM processing_locks WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired locks")
	}
	return result.RowsAffected()
}
