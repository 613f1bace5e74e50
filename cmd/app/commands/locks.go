package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/reelcast/internal/http/dto"
	lockUseCase "github.com/allisson/reelcast/internal/lock/usecase"
)

// RunListLocks prints every processing lock, flagging expired ones.
func RunListLocks(
	ctx context.Context,
	locks lockUseCase.LockUseCase,
	writer io.Writer,
	now time.Time,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	items, err := locks.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list locks: %w", err)
	}

	responses := make([]dto.LockResponse, 0, len(items))
	for _, lock := range items {
		responses = append(responses, dto.MapLockToResponse(lock, now))
	}

	if format == "json" {
		return writeJSON(writer, responses)
	}

	if len(responses) == 0 {
		_, _ = fmt.Fprintln(writer, "No locks held")
		return nil
	}
	for _, lock := range responses {
		state := "held"
		if lock.Expired {
			state = "expired"
		}
		_, _ = fmt.Fprintf(writer, "%-24s %-8s holder=%s expires=%s\n",
			lock.RecordID, state, lock.Holder, lock.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// RunSweepLocks deletes expired processing locks.
func RunSweepLocks(
	ctx context.Context,
	locks lockUseCase.LockUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	removed, err := locks.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep locks: %w", err)
	}
	logger.Info("lock sweep completed", slog.Int64("count", removed))

	if format == "json" {
		return writeJSON(writer, map[string]any{"removed": removed})
	}
	_, _ = fmt.Fprintf(writer, "Removed %d expired lock(s)\n", removed)
	return nil
}
