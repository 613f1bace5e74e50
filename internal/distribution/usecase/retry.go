package usecase

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

// newBackOff returns a deterministic doubling schedule starting at InitialBackoff, capped at
// MaxBackoff, that allows MaxAttempts attempts in total and stops when ctx is done.
func newBackOff(ctx context.Context, config distributionDomain.PlatformConfig) backoff.BackOffContext {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = config.InitialBackoff
	exponential.Multiplier = 2
	exponential.RandomizationFactor = 0
	exponential.MaxInterval = config.MaxBackoff
	exponential.MaxElapsedTime = 0
	exponential.Reset()

	retries := uint64(0)
	if config.MaxAttempts > 1 {
		retries = uint64(config.MaxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(exponential, retries), ctx)
}
