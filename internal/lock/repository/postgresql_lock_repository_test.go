package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

func TestPostgreSQLLockRepository_TryAcquire(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     bool
		wantErr  bool
	}{
		{name: "inserted", affected: 1, want: true},
		{name: "held by another", affected: 0, want: false},
		{name: "database error", execErr: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			lock := newLock("SKU-1", "worker-a", time.Now().UTC(), time.Minute)
			exec := mock.ExpectExec("INSERT INTO processing_locks").
				WithArgs(lock.LockID, lock.Holder, lock.Token, lock.AcquiredAt, lock.ExpiresAt, `{"run_id":"r1"}`)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			acquired, err := NewPostgreSQLLockRepository(db).TryAcquire(context.Background(), lock)
			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to acquire lock")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, acquired)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgreSQLLockRepository_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	lock := newLock("SKU-1", "worker-a", time.Now().UTC(), time.Minute)
	mock.ExpectExec("DELETE FROM processing_locks WHERE lock_id").
		WithArgs(lock.LockID, lock.Token).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgreSQLLockRepository(db).Release(context.Background(), lock.LockID, lock.Token)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLLockRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLLockRepository(db)
	lock := newLock("SKU-1", "worker-a", time.Now().UTC(), time.Minute)

	mock.ExpectQuery("SELECT lock_id, holder, token").
		WithArgs("SKU-1").
		WillReturnRows(sqlmock.NewRows([]string{"lock_id", "holder", "token", "acquired_at", "expires_at", "metadata"}).
			AddRow(lock.LockID, lock.Holder, lock.Token.String(), lock.AcquiredAt, lock.ExpiresAt, []byte(`{"run_id":"r1"}`)))

	stored, err := repo.Get(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, lock.Token, stored.Token)
	assert.Equal(t, "r1", stored.Metadata["run_id"])

	mock.ExpectQuery("SELECT lock_id, holder, token").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, lockDomain.ErrLockNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLLockRepository_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectExec("DELETE FROM processing_locks WHERE expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := NewPostgreSQLLockRepository(db).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}
