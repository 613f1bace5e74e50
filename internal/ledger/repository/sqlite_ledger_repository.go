package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// SQLiteLedgerRepository implements ledger persistence for SQLite with unix millisecond timestamps.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

// NewSQLiteLedgerRepository creates a new SQLiteLedgerRepository.
func NewSQLiteLedgerRepository(db *sql.DB) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{db: db}
}

// Insert appends an entry. An existing entry for the same record is left untouched.
func (r *SQLiteLedgerRepository) Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error {
	querier := database.GetTx(ctx, r.db)

	summary, err := encodeSummary(entry.ResultSummary)
	if err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO idempotency_ledger (record_id, processed_at, processed_by, result_summary)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, entry.RecordID, entry.ProcessedAt.UnixMilli(), entry.ProcessedBy, summary)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert ledger entry")
	}
	return nil
}

// Get retrieves the entry for a record.
func (r *SQLiteLedgerRepository) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger WHERE record_id = ?`

	entry, err := scanSQLiteEntry(querier.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ledger entry")
	}
	return entry, nil
}

// List returns entries ordered by processing time, newest first.
func (r *SQLiteLedgerRepository) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger ORDER BY processed_at DESC, record_id ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ledger entries")
	}
	return collectEntries(rows, scanSQLiteEntry)
}

// Delete removes the entry for a record so it becomes eligible again.
func (r *SQLiteLedgerRepository) Delete(ctx context.Context, recordID string) (bool, error) {
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

func scanSQLiteEntry(row rowScanner) (*ledgerDomain.IdempotencyEntry, error) {
	var entry ledgerDomain.IdempotencyEntry
	var processedAt int64
	var summary []byte

	if err := row.Scan(&entry.RecordID, &processedAt, &entry.ProcessedBy, &summary); err != nil {
		return nil, err
	}
	entry.ProcessedAt = time.UnixMilli(processedAt).UTC()

	decoded, err := decodeSummary(summary)
	if err != nil {
		return nil, err
	}
	entry.ResultSummary = decoded
	return &entry, nil
}
