package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	pipelineUseCase "github.com/allisson/reelcast/internal/pipeline/usecase"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// RunCycle runs one pipeline cycle and prints its report. Record and platform failures are
// part of the report; an error is returned only when the cycle itself could not run.
func RunCycle(
	ctx context.Context,
	pipeline pipelineUseCase.PipelineUseCase,
	logger *slog.Logger,
	writer io.Writer,
	opts pipelineUseCase.RunOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit must be zero or a positive number, got: %d", opts.Limit)
	}

	logger.Info("running single cycle",
		slog.Bool("dry_run", opts.DryRun),
		slog.Bool("force", opts.Force),
		slog.Int("limit", opts.Limit),
	)

	report, err := pipeline.RunCycle(ctx, opts)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, report)
	}
	outputCycleText(writer, report)
	return nil
}

func outputCycleText(writer io.Writer, report *pipelineDomain.CycleReport) {
	mode := "live"
	if report.DryRun {
		mode = "dry run"
	}
	if report.Force {
		mode += ", forced"
	}

	_, _ = fmt.Fprintf(writer, "Cycle %s (%s)\n", report.RunID, mode)
	_, _ = fmt.Fprintf(writer, "Duration:    %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	_, _ = fmt.Fprintf(writer, "Candidates:  %d\n", report.Candidates)
	_, _ = fmt.Fprintf(writer, "Distributed: %d\n", report.Counts[pipelineDomain.OutcomeDistributed])
	_, _ = fmt.Fprintf(writer, "Partial:     %d\n", report.Counts[pipelineDomain.OutcomePartial])
	_, _ = fmt.Fprintf(writer, "Failed:      %d\n", report.Counts[pipelineDomain.OutcomeFailed])
	_, _ = fmt.Fprintf(writer, "Skipped:     %d\n", report.Counts[pipelineDomain.OutcomeSkipped])
	_, _ = fmt.Fprintf(writer, "Platforms:   %d ok, %d failed\n", report.PlatformSuccesses, report.PlatformFailures)
	if report.Unvisited > 0 {
		_, _ = fmt.Fprintf(writer, "Unvisited:   %d", report.Unvisited)
		if report.BudgetExhausted {
			_, _ = fmt.Fprintf(writer, " (cycle budget exhausted)")
		}
		_, _ = fmt.Fprintln(writer)
	}

	if diag := report.Diagnostic; diag != nil && len(diag.Dropped) > 0 {
		reasons := make([]string, 0, len(diag.Dropped))
		for reason := range diag.Dropped {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		_, _ = fmt.Fprintf(writer, "\nDropped rows:\n")
		for _, reason := range reasons {
			_, _ = fmt.Fprintf(writer, "  %-20s %d\n", reason, diag.Dropped[sourceDomain.DropReason(reason)])
		}
	}

	if len(report.Records) > 0 {
		_, _ = fmt.Fprintf(writer, "\nRecords:\n")
	}
	for _, record := range report.Records {
		line := fmt.Sprintf("  %-24s %-12s", record.RecordID, record.Outcome)
		switch {
		case record.Error != "":
			line += " " + record.Error
		case record.Reason != "":
			line += " " + record.Reason
		case record.AssetURL != "":
			line += " " + record.AssetURL
		}
		if record.Committed {
			line += " [ledger]"
		}
		_, _ = fmt.Fprintln(writer, line)
	}

	if summary := report.Summary; summary != nil && len(summary.Errors) > 0 {
		_, _ = fmt.Fprintf(writer, "\nErrors:\n")
		for _, event := range summary.Errors {
			_, _ = fmt.Fprintf(writer, "  [%s] %s %s\n", event.Category, event.RecordID, event.Message)
		}
		if summary.Truncated {
			_, _ = fmt.Fprintf(writer, "  ...\n")
		}
	}
}
