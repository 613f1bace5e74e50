package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	"github.com/allisson/reelcast/internal/database"
	apperrors "github.com/allisson/reelcast/internal/errors"
)

// PostgreSQLAuditRepository implements audit event persistence for PostgreSQL.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQLAuditRepository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// Create appends an event.
func (r *PostgreSQLAuditRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, r.db)

	details, err := encodeDetails(event.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, run_id, created_at, level, category, record_id, message, details, signature)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(ctx, query,
		event.ID, event.RunID, event.Timestamp, string(event.Level), event.Category,
		event.RecordID, event.Message, details, event.Signature,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List returns events ordered oldest first within the optional inclusive time range.
func (r *PostgreSQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	where, args := rangeFilter(postgresPlaceholder, optionalTime(from), optionalTime(to))
	args = append(args, limit, offset)
	query := `SELECT id, run_id, created_at, level, category, record_id, message, details, signature
			  FROM audit_events` + where + fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return collectEvents(rows, scanEvent)
}

// DeleteOlderThan removes events created before cutoff, or only counts them when dryRun is set.
func (r *PostgreSQLAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events WHERE created_at < $1`, cutoff).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read audit rows affected")
	}
	return affected, nil
}

func postgresPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// optionalTime converts a nil *time.Time to an untyped nil so rangeFilter skips it.
func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// scanEvent scans rows whose time and id columns map directly onto Go types.
func scanEvent(row rowScanner) (*auditDomain.Event, error) {
	var event auditDomain.Event
	var level string
	var details []byte

	err := row.Scan(
		&event.ID, &event.RunID, &event.Timestamp, &level, &event.Category,
		&event.RecordID, &event.Message, &details, &event.Signature,
	)
	if err != nil {
		return nil, err
	}
	event.Level = auditDomain.Level(level)
	event.Timestamp = event.Timestamp.UTC()

	event.Details, err = decodeDetails(details)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
