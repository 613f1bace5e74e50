// Package usecase implements the distribution coordinator: isolated per-platform
// posting with bounded retries and policy-based aggregation.
package usecase

import (
	"context"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// Adapter publishes one asset to one platform.
type Adapter interface {
	Name() string
	Post(ctx context.Context, input distributionDomain.PostInput, creds map[string]string) (string, error)
}

// DistributeInput describes one record's asset to publish.
type DistributeInput struct {
	Record   sourceDomain.ProductRecord
	AssetURL string
	// DryRun replaces every platform call with a synthetic success.
	DryRun bool
}

// DistributionUseCase posts a record's asset to every configured platform.
type DistributionUseCase interface {
	// Distribute never fails because of a platform; per-platform outcomes are in the result.
	Distribute(ctx context.Context, input DistributeInput) (*distributionDomain.Result, error)
	Platforms() []string
	Policy() distributionDomain.Policy
}
