package usecase

import (
	"context"
	"time"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	"github.com/allisson/reelcast/internal/metrics"
)

// distributionUseCaseWithMetrics decorates DistributionUseCase with metrics instrumentation.
type distributionUseCaseWithMetrics struct {
	next    DistributionUseCase
	metrics metrics.BusinessMetrics
}

// NewDistributionUseCaseWithMetrics wraps a DistributionUseCase with metrics recording.
func NewDistributionUseCaseWithMetrics(useCase DistributionUseCase, m metrics.BusinessMetrics) DistributionUseCase {
	return &distributionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Distribute records one operation per platform outcome plus the overall distribution.
func (d *distributionUseCaseWithMetrics) Distribute(
	ctx context.Context,
	input DistributeInput,
) (*distributionDomain.Result, error) {
	start := time.Now()
	result, err := d.next.Distribute(ctx, input)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !result.Distributed(d.next.Policy()):
		status = "not_distributed"
	}

	if result != nil {
		for _, name := range result.Names() {
			d.metrics.RecordOperation(ctx, "distribution", "post_"+name, string(result.Platforms[name].Outcome))
		}
	}
	d.metrics.RecordOperation(ctx, "distribution", "distribute", status)
	d.metrics.RecordDuration(ctx, "distribution", "distribute", time.Since(start), status)

	return result, err
}

// Platforms delegates to the wrapped use case.
func (d *distributionUseCaseWithMetrics) Platforms() []string {
	return d.next.Platforms()
}

// Policy delegates to the wrapped use case.
func (d *distributionUseCaseWithMetrics) Policy() distributionDomain.Policy {
	return d.next.Policy()
}
