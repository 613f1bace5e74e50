// Package repository provides idempotency ledger persistence for PostgreSQL, MySQL,
// SQLite and memory.
package repository

import (
	"encoding/json"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

func encodeSummary(summary map[string]string) (string, error) {
	if len(summary) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode result summary")
	}
	return string(data), nil
}

func decodeSummary(raw []byte) (map[string]string, error) {
	summary := map[string]string{}
	if len(raw) == 0 {
		return summary, nil
	}
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode result summary")
	}
	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
