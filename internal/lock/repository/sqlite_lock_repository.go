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

// SQLiteLockRepository implements lock persistence for SQLite. Timestamps are stored as
// unix milliseconds so that expiry comparisons are numeric.
type SQLiteLockRepository struct {
	db *sql.DB
}

// NewSQLiteLockRepository creates a new SQLiteLockRepository.
func NewSQLiteLockRepository(db *sql.DB) *SQLiteLockRepository {
	return &SQLiteLockRepository{db: db}
}

// TryAcquire inserts the lock or takes over an expired row in one upsert.
func (r *SQLiteLockRepository) TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	metadata, err := encodeMetadata(lock.Metadata)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO processing_locks (lock_id, holder, token, acquired_at, expires_at, metadata)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT (lock_id) DO UPDATE
			  SET holder = excluded.holder,
				  token = excluded.token,
				  acquired_at = excluded.acquired_at,
				  expires_at = excluded.expires_at,
				  metadata = excluded.metadata
			  WHERE processing_locks.expires_at <= excluded.acquired_at`

	result, err := querier.ExecContext(
		ctx,
		query,
		lock.LockID,
		lock.Holder,
		lock.Token.String(),
		lock.AcquiredAt.UnixMilli(),
		lock.ExpiresAt.UnixMilli(),
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
func (r *SQLiteLockRepository) Release(ctx context.Context, lockID string, token uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM processing_locks WHERE lock_id = ? AND token = ?`

	if _, err := querier.ExecContext(ctx, query, lockID, token.String()); err != nil {
		return apperrors.Wrap(err, "failed to release lock")
	}
	return nil
}

// Get retrieves a lock row by id, expired or not.
func (r *SQLiteLockRepository) Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT lock_id, holder, token, acquired_at, expires_at, metadata
			  FROM processing_locks WHERE lock_id = ?`

	lock, err := scanSQLiteLock(querier.QueryRowContext(ctx, query, lockID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lockDomain.ErrLockNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get lock")
	}
	return lock, nil
}

// List returns every lock row ordered by acquisition time.
func (r *SQLiteLockRepository) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT lock_id, holder, token, acquired_at, expires_at, metadata
			  FROM processing_locks ORDER BY acquired_at ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list locks")
	}
	defer rows.Close() //nolint:errcheck

	var locks []*lockDomain.ProcessingLock
	for rows.Next() {
		lock, err := scanSQLiteLock(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan lock")
		}
		locks = append(locks, lock)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate locks")
	}
	return locks, nil
}

// DeleteExpired removes lock rows that expired at or before now.
func (r *SQLiteLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM processing_locks WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired locks")
	}
	return result.RowsAffected()
}

func scanSQLiteLock(row rowScanner) (*lockDomain.ProcessingLock, error) {
	var (
		lock       lockDomain.ProcessingLock
		token      string
		acquiredAt int64
		expiresAt  int64
		metadata   []byte
	)

	if err := row.Scan(&lock.LockID, &lock.Holder, &token, &acquiredAt, &expiresAt, &metadata); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid lock token")
	}
	lock.Token = parsed
	lock.AcquiredAt = time.UnixMilli(acquiredAt).UTC()
	lock.ExpiresAt = time.UnixMilli(expiresAt).UTC()

	decoded, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	lock.Metadata = decoded
	return &lock, nil
}
