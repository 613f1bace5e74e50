// Package repository provides persistence for processing locks on PostgreSQL, MySQL,
// SQLite and in memory. Every operation is a single atomic statement so that
// concurrent processes never need a transaction spanning the pipeline.
package repository

import (
	"encoding/json"

	apperrors "github.com/allisson/reelcast/internal/errors"
)

func encodeMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode lock metadata")
	}
	return string(data), nil
}

func decodeMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode lock metadata")
	}
	if len(metadata) == 0 {
		return nil, nil
	}
	return metadata, nil
}
