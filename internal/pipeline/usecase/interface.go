// Package usecase implements the pipeline orchestrator: one cycle fetches candidates and
// drives each record through lock, ledger check, mapping, generation, distribution,
// writeback and commit, recording every decision in the audit buffer.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/reelcast/internal/mapping"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
	sourceService "github.com/allisson/reelcast/internal/source/service"
)

// CandidateSource returns the filtered, ordered candidate records of one source snapshot.
type CandidateSource interface {
	Fetch(
		ctx context.Context,
		sourceRef string,
		opts sourceService.FetchOptions,
	) ([]sourceDomain.ProductRecord, *sourceDomain.Diagnostic, error)
}

// ParameterMapper chooses generation parameters for a record.
type ParameterMapper interface {
	Map(record sourceDomain.ProductRecord) mapping.Parameters
}

// WritebackSink persists results back to the source row.
type WritebackSink interface {
	Enabled() bool
	Writeback(ctx context.Context, record sourceDomain.ProductRecord, payload sourceDomain.WritebackPayload) error
}

// RunOptions override the configured behavior for one cycle.
type RunOptions struct {
	DryRun bool
	// Force ignores the source "posted" flag and the ledger short-circuit.
	Force bool
	// Limit caps how many candidates are started. Zero means no limit.
	Limit int
}

// PipelineUseCase runs processing cycles.
type PipelineUseCase interface {
	// RunCycle processes one snapshot of the source. Per-record failures are reported in
	// the returned report; an error means the cycle itself could not run.
	RunCycle(ctx context.Context, opts RunOptions) (*pipelineDomain.CycleReport, error)
	// Start runs a cycle immediately and then every interval until ctx is canceled.
	Start(ctx context.Context, interval time.Duration, opts RunOptions) error
	// DefaultOptions returns the configured run options.
	DefaultOptions() RunOptions
}
