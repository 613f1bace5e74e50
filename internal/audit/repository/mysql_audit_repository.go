package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// MySQLAuditRepository implements audit event persistence for MySQL.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQLAuditRepository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// Create appends an event.
func (r *MySQLAuditRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, r.db)

	details, err := encodeDetails(event.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, run_id, created_at, level, category, record_id, message, details, signature)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		event.ID.String(), event.RunID.String(), event.Timestamp.UTC(), string(event.Level), event.Category,
		event.RecordID, event.Message, details, event.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List returns events ordered oldest first within the optional inclusive time range.
func (r *MySQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	where, args := rangeFilter(questionPlaceholder, optionalTime(from), optionalTime(to))
	args = append(args, limit, offset)
	query := `SELECT id, run_id, created_at, level, category, record_id, message, details, signature
			  FROM audit_events` + where + ` ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return collectEvents(rows, scanEvent)
}

// DeleteOlderThan removes events created before cutoff, or only counts them when dryRun is set.
func (r *MySQLAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	return deleteOlderThan(ctx, database.GetTx(ctx, r.db), cutoff.UTC(), dryRun)
}

func questionPlaceholder(int) string {
	return "?"
}

// deleteOlderThan serves the drivers that use ? placeholders.
func deleteOlderThan(ctx context.Context, querier database.Querier, cutoff any, dryRun bool) (int64, error) {
	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events WHERE created_at < ?`, cutoff).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read audit rows affected")
	}
	return affected, nil
}
