package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// SQLiteAuditRepository implements audit event persistence for SQLite with unix
// millisecond timestamps.
type SQLiteAuditRepository struct {
	db *sql.DB
}

// NewSQLiteAuditRepository creates a new SQLiteAuditRepository.
func NewSQLiteAuditRepository(db *sql.DB) *SQLiteAuditRepository {
	return &SQLiteAuditRepository{db: db}
}

// Create appends an event.
func (r *SQLiteAuditRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, r.db)

	details, err := encodeDetails(event.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, run_id, created_at, level, category, record_id, message, details, signature)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		event.ID.String(), event.RunID.String(), event.Timestamp.UnixMilli(), string(event.Level), event.Category,
		event.RecordID, event.Message, details, event.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List returns events ordered oldest first within the optional inclusive time range.
func (r *SQLiteAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	where, args := rangeFilter(questionPlaceholder, unixMilli(from), unixMilli(to))
	args = append(args, limit, offset)
	query := `SELECT id, run_id, created_at, level, category, record_id, message, details, signature
			  FROM audit_events` + where + ` ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return collectEvents(rows, scanSQLiteEvent)
}

// DeleteOlderThan removes events created before cutoff, or only counts them when dryRun is set.
func (r *SQLiteAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	return deleteOlderThan(ctx, database.GetTx(ctx, r.db), cutoff.UnixMilli(), dryRun)
}

func unixMilli(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func scanSQLiteEvent(row rowScanner) (*auditDomain.Event, error) {
	var event auditDomain.Event
	var createdAt int64
	var level string
	var details []byte

	err := row.Scan(
		&event.ID, &event.RunID, &createdAt, &level, &event.Category,
		&event.RecordID, &event.Message, &details, &event.Signature,
	)
	if err != nil {
		return nil, err
	}
	event.Timestamp = time.UnixMilli(createdAt).UTC()
	event.Level = auditDomain.Level(level)

	event.Details, err = decodeDetails(details)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
