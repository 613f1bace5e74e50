package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// PostgreSQLLedgerRepository implements ledger persistence for PostgreSQL.
type PostgreSQLLedgerRepository struct {
	db *sql.DB
}

// NewPostgreSQLLedgerRepository creates a new PostgreSQLLedgerRepository.
func NewPostgreSQLLedgerRepository(db *sql.DB) *PostgreSQLLedgerRepository {
	return &PostgreSQLLedgerRepository{db: db}
}

// Insert appends an entry. An existing entry for the same record is left untouched.
func (r *PostgreSQLLedgerRepository) Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error {
	querier := database.GetTx(ctx, r.db)

	summary, err := encodeSummary(entry.ResultSummary)
	if err != nil {
		return err
	}

	query := `INSERT INTO idempotency_ledger (record_id, processed_at, processed_by, result_summary)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (record_id) DO NOTHING`

	_, err = querier.ExecContext(ctx, query, entry.RecordID, entry.ProcessedAt, entry.ProcessedBy, summary)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert ledger entry")
	}
	return nil
}

// Get retrieves the entry for a record.
func (r *PostgreSQLLedgerRepository) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger WHERE record_id = $1`

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
func (r *PostgreSQLLedgerRepository) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT record_id, processed_at, processed_by, result_summary
			  FROM idempotency_ledger ORDER BY processed_at DESC, record_id ASC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ledger entries")
	}
	return collectEntries(rows, scanEntry)
}

// Delete removes the entry for a record so it becomes eligible again.
func (r *PostgreSQLLedgerRepository) Delete(ctx context.Context, recordID string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM idempotency_ledger WHERE record_id = $1`, recordID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete ledger entry")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read ledger rows affected")
	}
	return affected > 0, nil
}

func scanEntry(row rowScanner) (*ledgerDomain.IdempotencyEntry, error) {
	var entry ledgerDomain.IdempotencyEntry
	var summary []byte

	if err := row.Scan(&entry.RecordID, &entry.ProcessedAt, &entry.ProcessedBy, &summary); err != nil {
		return nil, err
	}

	decoded, err := decodeSummary(summary)
	if err != nil {
		return nil, err
	}
	entry.ResultSummary = decoded
	return &entry, nil
}

func collectEntries(
	rows *sql.Rows,
	scan func(rowScanner) (*ledgerDomain.IdempotencyEntry, error),
) ([]*ledgerDomain.IdempotencyEntry, error) {
	defer rows.Close() //nolint:errcheck

	entries := make([]*ledgerDomain.IdempotencyEntry, 0)
	for rows.Next() {
		entry, err := scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ledger entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ledger entries")
	}
	return entries, nil
}
