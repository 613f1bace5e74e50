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

// PostgreSQLLockRepository implements lock persistence for PostgreSQL.
type PostgreSQLLockRepository struct {
	db *sql.DB
}

// NewPostgreSQLLockRepository creates a new PostgreSQLLockRepository.
func NewPostgreSQLLockRepository(db *sql.DB) *PostgreSQLLockRepository {
	return &PostgreSQLLockRepository{db: db}
}

// TryAcquire inserts the lock or takes over an expired row in one upsert. It reports
// false when an unexpired lock is held by anyone.
func (r *PostgreSQLLockRepository) TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	metadata, err := encodeMetadata(lock.Metadata)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO processing_locks (lock_id, holder, token, acquired_at, expires_at, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (lock_id) DO UPDATE
			  SET holder = EXCLUDED.holder,
				  token = EXCLUDED.token,
				  acquired_at = EXCLUDED.acquired_at,
				  expires_at = EXCLUDED.expires_at,
				  metadata = EXCLUDED.metadata
			  WHERE processing_locks.expires_at <= EXCLUDED.acquired_at`

	result, err := querier.ExecContext(
		ctx,
		query,
		lock.LockID,
		lock.Holder,
		lock.Token,
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

// Release deletes the lock only when the token still matches. Releasing an absent or
// re-acquired lock is a no-op.
func (r *PostgreSQLLockRepository) Release(ctx context.Context, lockID string, token uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM processing_locks WHERE lock_id = $1 AND token = $2`

	if _, err := querier.ExecContext(ctx, query, lockID, token); err != nil {
		return apperrors.Wrap(err, "failed to release lock")
	}
	return nil
}

// Get retrieves a lock row by id, expired or not.
func (r *PostgreSQLLockRepository) Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT lock_id, holder, token, acquired_at, expires_at, metadata
			  FROM processing_locks WHERE lock_id = $1`

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
func (r *PostgreSQLLockRepository) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
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
func (r *PostgreSQLLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM processing_locks WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired locks")
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLock(row rowScanner) (*lockDomain.ProcessingLock, error) {
	var lock lockDomain.ProcessingLock
	var metadata []byte

	if err := row.Scan(
		&lock.LockID,
		&lock.Holder,
		&lock.Token,
		&lock.AcquiredAt,
		&lock.ExpiresAt,
		&metadata,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	lock.Metadata = decoded
	return &lock, nil
}

func collectLocks(rows *sql.Rows) ([]*lockDomain.ProcessingLock, error) {
	defer rows.Close() //nolint:errcheck

	var locks []*lockDomain.ProcessingLock
	for rows.Next() {
		lock, err := scanLock(rows)
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
