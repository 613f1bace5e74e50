// Package service implements the tabular source connector and the writeback sink.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"

	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

var googleSheetPattern = regexp.MustCompile(`^https://docs\.google\.com/spreadsheets/d/([A-Za-z0-9_-]+)`)
var googleSheetGID = regexp.MustCompile(`[#&?]gid=([0-9]+)`)

// FetchOptions alters filtering for one fetch.
type FetchOptions struct {
	// Force keeps rows whose already-distributed flag is set.
	Force bool
}

// Connector fetches rows from a CSV source and turns them into filtered candidates.
type Connector struct {
	client  *http.Client
	aliases sourceDomain.FieldAliases
	logger  *slog.Logger
}

// NewConnector creates a Connector. A nil client uses http.DefaultClient.
func NewConnector(client *http.Client, aliases sourceDomain.FieldAliases, logger *slog.Logger) *Connector {
	if client == nil {
		client = http.DefaultClient
	}
	return &Connector{client: client, aliases: aliases, logger: logger}
}

// Fetch reads sourceRef and returns the ordered candidate records together with the
// filtering diagnostic. When no candidate survives filtering the diagnostic is logged.
func (c *Connector) Fetch(
	ctx context.Context,
	sourceRef string,
	opts FetchOptions,
) ([]sourceDomain.ProductRecord, *sourceDomain.Diagnostic, error) {
	body, err := c.open(ctx, sourceRef)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close() //nolint:errcheck

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", sourceDomain.ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no header row", sourceDomain.ErrSourceMalformed)
	}

	records, diag, err := c.parse(rows, opts)
	if err != nil {
		return nil, nil, err
	}

	if diag.Empty() && c.logger != nil {
		c.logger.Warn("no candidate records after filtering",
			slog.Int("total_rows", diag.TotalRows),
			slog.Any("dropped", diag.Dropped),
			slog.Any("samples", diag.Samples),
		)
	}

	return records, diag, nil
}

// open returns a reader for an http(s) URL, a file:// URL or a local path.
func (c *Connector) open(ctx context.Context, sourceRef string) (io.ReadCloser, error) {
	if sourceRef == "" {
		return nil, fmt.Errorf("%w: empty source reference", sourceDomain.ErrSourceUnavailable)
	}

	if !strings.HasPrefix(sourceRef, "http://") && !strings.HasPrefix(sourceRef, "https://") {
		f, err := os.Open(strings.TrimPrefix(sourceRef, "file://"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sourceDomain.ErrSourceUnavailable, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL(sourceRef), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sourceDomain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sourceDomain.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status %d", sourceDomain.ErrSourceUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}

// exportURL rewrites a Google Sheets editor link into its CSV export URL.
func exportURL(ref string) string {
	match := googleSheetPattern.FindStringSubmatch(ref)
	if match == nil || strings.Contains(ref, "/export") {
		return ref
	}

	export := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", match[1])
	if gid := googleSheetGID.FindStringSubmatch(ref); gid != nil {
		export += "&gid=" + gid[1]
	}
	return export
}

type columnIndex struct {
	id, title, description, ready, posted int
}

func (c *Connector) resolveColumns(header []string) columnIndex {
	normalized := make(map[string]int, len(header))
	for i, name := range header {
		key := sourceDomain.NormalizeColumn(name)
		if _, exists := normalized[key]; !exists {
			normalized[key] = i
		}
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			if idx, ok := normalized[sourceDomain.NormalizeColumn(alias)]; ok {
				return idx
			}
		}
		return -1
	}

	return columnIndex{
		id:          find(c.aliases.ID),
		title:       find(c.aliases.Title),
		description: find(c.aliases.Description),
		ready:       find(c.aliases.Ready),
		posted:      find(c.aliases.Posted),
	}
}

func (c *Connector) parse(
	rows [][]string,
	opts FetchOptions,
) ([]sourceDomain.ProductRecord, *sourceDomain.Diagnostic, error) {
	header := rows[0]
	cols := c.resolveColumns(header)
	if cols.id < 0 || (cols.title < 0 && cols.description < 0) {
		return nil, nil, fmt.Errorf(
			"%w: header must contain an id column and a title or description column",
			sourceDomain.ErrSourceMalformed,
		)
	}

	diag := sourceDomain.NewDiagnostic()
	records := make([]sourceDomain.ProductRecord, 0, len(rows)-1)
	seen := make(map[string]struct{})
	schemaRows := 0

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		diag.TotalRows++
		rowNumber := i + 2

		attrs := make(map[string]string, len(header))
		for j, name := range header {
			key := sourceDomain.NormalizeColumn(name)
			if _, exists := attrs[key]; exists || key == "" {
				continue
			}
			attrs[key] = cell(row, j)
		}

		record := sourceDomain.ProductRecord{
			RecordID:      cell(row, cols.id),
			RowNumber:     rowNumber,
			Title:         cell(row, cols.title),
			Description:   cell(row, cols.description),
			RawAttributes: attrs,
		}
		if record.Title != "" || record.Description != "" {
			schemaRows++
		}
		if cols.posted >= 0 {
			record.AlreadyDistributed = parseTruthy(cell(row, cols.posted))
		}
		if cols.ready >= 0 {
			if value := cell(row, cols.ready); value != "" {
				ready := parseTruthy(value)
				record.Ready = &ready
			}
		}

		if reason, dropped := dropReason(record, opts, seen); dropped {
			diag.Drop(sourceDomain.DroppedRow{RowNumber: rowNumber, Reason: reason, Cells: attrs})
			continue
		}

		seen[record.RecordID] = struct{}{}
		records = append(records, record)
	}

	if diag.TotalRows > 0 && schemaRows == 0 {
		return nil, nil, fmt.Errorf("%w: no row has a title or description", sourceDomain.ErrSourceMalformed)
	}

	diag.Kept = len(records)
	return records, diag, nil
}

// dropReason applies the filtering precedence: missing id, then already posted, then not ready.
func dropReason(
	record sourceDomain.ProductRecord,
	opts FetchOptions,
	seen map[string]struct{},
) (sourceDomain.DropReason, bool) {
	switch {
	case record.RecordID == "":
		return sourceDomain.DropReasonNoID, true
	case record.AlreadyDistributed && !opts.Force:
		return sourceDomain.DropReasonAlreadyPosted, true
	case record.Ready != nil && !*record.Ready:
		return sourceDomain.DropReasonNotReady, true
	}
	if _, dup := seen[record.RecordID]; dup {
		return sourceDomain.DropReasonDuplicate, true
	}
	return "", false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// parseTruthy interprets common spreadsheet flag spellings.
func parseTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "x", "✓", "✔", "done", "posted", "ready", "approved":
		return true
	default:
		return false
	}
}

// IsSourceError reports whether err is fatal to the cycle.
func IsSourceError(err error) bool {
	return errors.Is(err, sourceDomain.ErrSourceUnavailable) || errors.Is(err, sourceDomain.ErrSourceMalformed)
}
