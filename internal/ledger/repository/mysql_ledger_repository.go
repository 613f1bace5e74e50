package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// MySQLLedgerRepository implements ledger persistence for MySQL. The DSN must set parseTime=true.
type MySQLLedgerRepository struct {
	db *sql.DB
}

// NewMySQLLedgerRepository creates a new MySQLLedgerRepository.
func NewMySQLLedgerRepository(db *sql.DB) *MySQLLedgerRepository {
	return &MySQLLedgerRepository{db: db}
}

// Insert appends an entry. An existing entry for the same record is left untouched.
func (r *MySQLLedgerRepository) Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error {
	querier := database.GetTx(ctx, r.db)

	summary, err := encodeSummary(entry.ResultSummary)
	if err != nil {
		return err
	}

	query := `INSERT IGNORE INTO idempotency_ledger (record_id, processed_at, processed_by, result_summary)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, entry.RecordID, entry.ProcessedAt, entry.ProcessedBy, summary)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert ledger entry")
	}
	return nil
}

// Get retrieves the entry for a record.
func (r *MySQLLedgerRepository) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger WHERE record_id = ?`

	entry, err := scanEntry(querier.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ledger entry")
	}
	return entry, nil
}

// List returns entries ordered by processing time, newest first.
func (r *MySQLLedgerRepository) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger ORDER BY processed_at DESC, record_id ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ledger entries")
	}
	return collectEntries(rows, scanEntry)
}

// Delete removes the entry for a record so it becomes eligible again.
func (r *MySQLLedgerRepository) Delete(ctx context.Context, recordID string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM idempotency_ledger WHERE record_id = ?`, recordID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete ledger entry")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read ledger rows affected")
	}
	return affected > 0, nil
}
