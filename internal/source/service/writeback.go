package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/allisson/reelcast/internal/credential"
	apperrors "github.com/allisson/reelcast/internal/errors"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// WritebackConfig configures the HTTP writeback sink.
type WritebackConfig struct {
	// Endpoint receives one JSON CellUpdate per POST. Empty disables writeback.
	Endpoint string
	// TokenRef is a credential reference for the bearer token. Empty disables writeback.
	TokenRef string
	Columns  sourceDomain.WritebackColumns
}

// DefaultWritebackColumns returns the column names used when none are configured.
func DefaultWritebackColumns() sourceDomain.WritebackColumns {
	return sourceDomain.WritebackColumns{
		AssetURL: sourceDomain.ColumnRef{Name: "video url"},
		Mapping:  sourceDomain.ColumnRef{Name: "video mapping"},
		Results:  sourceDomain.ColumnRef{Name: "distribution results"},
		Posted:   sourceDomain.ColumnRef{Name: "posted"},
	}
}

// WritebackSink persists pipeline results back to the source row. It is best effort.
type WritebackSink struct {
	client   *http.Client
	config   WritebackConfig
	resolver credential.Resolver
	logger   *slog.Logger
}

// NewWritebackSink creates a WritebackSink. A nil client uses http.DefaultClient.
func NewWritebackSink(
	client *http.Client,
	config WritebackConfig,
	resolver credential.Resolver,
	logger *slog.Logger,
) *WritebackSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WritebackSink{client: client, config: config, resolver: resolver, logger: logger}
}

// Enabled reports whether writeback has both an endpoint and a credential configured.
func (w *WritebackSink) Enabled() bool {
	return w.config.Endpoint != "" && w.config.TokenRef != ""
}

// Writeback writes the asset URL, mapping and per-platform results, then the posted flag last.
// Missing configuration skips silently. Individual cell failures are collected into an
// ErrWritebackFailure; cells already written are not rolled back.
func (w *WritebackSink) Writeback(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	payload sourceDomain.WritebackPayload,
) error {
	if !w.Enabled() {
		if w.logger != nil {
			w.logger.Debug("writeback disabled, skipping", slog.String("record_id", record.RecordID))
		}
		return nil
	}

	token, err := w.resolver.Resolve(ctx, w.config.TokenRef)
	if err != nil {
		if apperrors.Is(err, credential.ErrCredentialNotFound) {
			if w.logger != nil {
				w.logger.Debug("writeback credential missing, skipping", slog.String("record_id", record.RecordID))
			}
			return nil
		}
		return fmt.Errorf("%w: %v", sourceDomain.ErrWritebackFailure, err)
	}

	updates := w.updates(record, payload)

	var failures []error
	for _, update := range updates {
		if err := w.send(ctx, token, update); err != nil {
			failures = append(failures, fmt.Errorf("column %s: %w", columnLabel(update.Column), err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %d of %d cells: %w",
			sourceDomain.ErrWritebackFailure, len(failures), len(updates), apperrors.Join(failures...))
	}
	return nil
}

func (w *WritebackSink) updates(
	record sourceDomain.ProductRecord,
	payload sourceDomain.WritebackPayload,
) []sourceDomain.CellUpdate {
	cols := w.config.Columns
	var updates []sourceDomain.CellUpdate

	add := func(col sourceDomain.ColumnRef, value string) {
		if col.Name == "" && col.Position <= 0 {
			return
		}
		updates = append(updates, sourceDomain.CellUpdate{
			RecordID: record.RecordID,
			Row:      record.RowNumber,
			Column:   col,
			Value:    value,
		})
	}

	if payload.AssetURL != "" {
		add(cols.AssetURL, payload.AssetURL)
	}
	if payload.Mapping != "" {
		add(cols.Mapping, payload.Mapping)
	}
	if len(payload.Results) > 0 {
		add(cols.Results, formatResults(payload.Results))
	}
	if payload.Posted {
		add(cols.Posted, "TRUE")
	}
	return updates
}

func (w *WritebackSink) send(ctx context.Context, token string, update sourceDomain.CellUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// formatResults renders platform results as "platform=value" pairs in name order.
func formatResults(results map[string]string) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+results[name])
	}
	return strings.Join(parts, "; ")
}

func columnLabel(col sourceDomain.ColumnRef) string {
	if col.Name != "" {
		return col.Name
	}
	return fmt.Sprintf("#%d", col.Position)
}
