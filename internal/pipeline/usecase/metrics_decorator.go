package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/reelcast/internal/metrics"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
)

// pipelineUseCaseWithMetrics decorates PipelineUseCase with metrics instrumentation.
type pipelineUseCaseWithMetrics struct {
	next    PipelineUseCase
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewPipelineUseCaseWithMetrics wraps a PipelineUseCase with metrics recording.
func NewPipelineUseCaseWithMetrics(
	useCase PipelineUseCase,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) PipelineUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &pipelineUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
		logger:  logger,
	}
}

// RunCycle records the cycle duration and one operation per record outcome.
func (p *pipelineUseCaseWithMetrics) RunCycle(
	ctx context.Context,
	opts RunOptions,
) (*pipelineDomain.CycleReport, error) {
	start := time.Now()
	report, err := p.next.RunCycle(ctx, opts)

	status := "success"
	if err != nil {
		status = "error"
	}

	if report != nil {
		for _, record := range report.Records {
			p.metrics.RecordOperation(ctx, "pipeline", "record", string(record.Outcome))
		}
		if report.BudgetExhausted {
			p.metrics.RecordOperation(ctx, "pipeline", "budget_exhausted", "warning")
		}
	}
	p.metrics.RecordOperation(ctx, "pipeline", "run_cycle", status)
	p.metrics.RecordDuration(ctx, "pipeline", "run_cycle", time.Since(start), status)

	return report, err
}

// Start runs instrumented cycles on the interval.
func (p *pipelineUseCaseWithMetrics) Start(ctx context.Context, interval time.Duration, opts RunOptions) error {
	return runEvery(ctx, interval, p.logger, func(ctx context.Context) error {
		_, err := p.RunCycle(ctx, opts)
		return err
	})
}

// DefaultOptions delegates to the wrapped use case.
func (p *pipelineUseCaseWithMetrics) DefaultOptions() RunOptions {
	return p.next.DefaultOptions()
}
