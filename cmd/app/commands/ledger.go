package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/reelcast/internal/http/dto"
	ledgerUseCase "github.com/allisson/reelcast/internal/ledger/usecase"
)

// RunListLedger prints a page of ledger entries, newest first.
func RunListLedger(
	ctx context.Context,
	ledger ledgerUseCase.LedgerUseCase,
	writer io.Writer,
	offset, limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if offset < 0 || limit < 1 {
		return fmt.Errorf("offset must be zero or positive and limit must be positive")
	}

	entries, err := ledger.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list ledger entries: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, dto.MapList(entries, dto.MapLedgerEntryToResponse).Data)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(writer, "No ledger entries")
		return nil
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(writer, "%-24s %s by %s\n",
			entry.RecordID, entry.ProcessedAt.Format(time.RFC3339), entry.ProcessedBy)
	}
	return nil
}

// RunForgetLedger deletes the ledger entry for recordID so the next cycle reprocesses it.
func RunForgetLedger(
	ctx context.Context,
	ledger ledgerUseCase.LedgerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	recordID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if recordID == "" {
		return fmt.Errorf("record id is required")
	}

	deleted, err := ledger.Forget(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to forget ledger entry: %w", err)
	}
	logger.Info("ledger forget completed",
		slog.String("record_id", recordID),
		slog.Bool("deleted", deleted),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{"record_id": recordID, "deleted": deleted})
	}
	if deleted {
		_, _ = fmt.Fprintf(writer, "Ledger entry %s removed; the record will be reprocessed\n", recordID)
	} else {
		_, _ = fmt.Fprintf(writer, "No ledger entry for %s\n", recordID)
	}
	return nil
}
