// Package repository provides audit event persistence for PostgreSQL, MySQL, SQLite and
// memory. Events are append-only; the only deletion is age-based cleanup.
package repository

import (
	"database/sql"
	"encoding/json"
	"strings"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	apperrors "github.com/allisson/reelcast/internal/errors"
)

func encodeDetails(details map[string]any) (string, error) {
	if len(details) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal audit event details")
	}
	return string(data), nil
}

func decodeDetails(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var details map[string]any
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event details")
	}
	if len(details) == 0 {
		return nil, nil
	}
	return details, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collectEvents(
	rows *sql.Rows,
	scan func(rowScanner) (*auditDomain.Event, error),
) ([]*auditDomain.Event, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		event, err := scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// rangeFilter renders the optional inclusive created_at bounds as a WHERE clause.
func rangeFilter(placeholder func(int) string, from, to any) (string, []any) {
	var conditions []string
	var args []any
	if from != nil {
		args = append(args, from)
		conditions = append(conditions, "created_at >= "+placeholder(len(args)))
	}
	if to != nil {
		args = append(args, to)
		conditions = append(conditions, "created_at <= "+placeholder(len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
