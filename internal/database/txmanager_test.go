package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_events").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		assert.IsType(t, &sql.Tx{}, querier)

		_, err := querier.ExecContext(ctx, "INSERT INTO audit_events (id) VALUES (1)")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	testError := errors.New("boom")
	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return testError
	})

	assert.Equal(t, testError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, db, GetTx(context.Background(), db))
}

func TestNoOpTxManager(t *testing.T) {
	ctx := context.Background()
	manager := NewNoOpTxManager()

	called := false
	err := manager.WithTx(ctx, func(txCtx context.Context) error {
		called = true
		assert.Equal(t, ctx, txCtx)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	expected := errors.New("boom")
	err = manager.WithTx(ctx, func(context.Context) error { return expected })
	assert.ErrorIs(t, err, expected)
}
