package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/reelcast/internal/credential"
	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

// Target pairs an adapter with the platform definition that tunes it.
type Target struct {
	Adapter Adapter
	Config  distributionDomain.PlatformConfig
}

// Option customizes the distribution use case.
type Option func(*distributionUseCase)

// WithTimer replaces the backoff timer, one per platform run. Used by tests to avoid sleeping.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(d *distributionUseCase) {
		d.newTimer = newTimer
	}
}

// WithClock replaces the clock used to stamp attempts.
func WithClock(now func() time.Time) Option {
	return func(d *distributionUseCase) {
		d.now = now
	}
}

type distributionUseCase struct {
	targets  []Target
	policy   distributionDomain.Policy
	resolver credential.Resolver
	logger   *slog.Logger
	newTimer func() backoff.Timer
	now      func() time.Time
}

// NewDistributionUseCase creates the coordinator. Platform configs get defaults applied.
func NewDistributionUseCase(
	targets []Target,
	policy distributionDomain.Policy,
	resolver credential.Resolver,
	logger *slog.Logger,
	opts ...Option,
) DistributionUseCase {
	prepared := make([]Target, 0, len(targets))
	for _, target := range targets {
		target.Config = target.Config.WithDefaults()
		target.Config.Name = target.Adapter.Name()
		prepared = append(prepared, target)
	}

	d := &distributionUseCase{
		targets:  prepared,
		policy:   policy,
		resolver: resolver,
		logger:   logger,
		newTimer: func() backoff.Timer { return nil },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Platforms returns the configured platform names in configuration order.
func (d *distributionUseCase) Platforms() []string {
	names := make([]string, 0, len(d.targets))
	for _, target := range d.targets {
		names = append(names, target.Config.Name)
	}
	return names
}

// Policy returns the distribution policy.
func (d *distributionUseCase) Policy() distributionDomain.Policy {
	return d.policy
}

// Distribute posts to every platform concurrently. A platform that fails, even after
// exhausting its retries, never affects the others.
func (d *distributionUseCase) Distribute(
	ctx context.Context,
	input DistributeInput,
) (*distributionDomain.Result, error) {
	if len(d.targets) == 0 {
		return nil, distributionDomain.ErrNoPlatforms
	}

	result := distributionDomain.NewResult(input.Record.RecordID, input.DryRun)

	var (
		mu    sync.Mutex
		group errgroup.Group
	)
	for _, target := range d.targets {
		group.Go(func() error {
			platformResult := d.distributeTo(ctx, target, input)

			mu.Lock()
			result.Platforms[platformResult.Platform] = platformResult
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return result, nil
}

func (d *distributionUseCase) distributeTo(
	ctx context.Context,
	target Target,
	input DistributeInput,
) *distributionDomain.PlatformResult {
	name := target.Config.Name
	logger := d.logger.With(slog.String("record_id", input.Record.RecordID), slog.String("platform", name))
	post := distributionDomain.PostInput{
		RecordID: input.Record.RecordID,
		Title:    input.Record.Title,
		AssetURL: input.AssetURL,
		Caption:  BuildCaption(input.Record, target.Config.Hashtags, target.Config.MaxCaption),
	}

	if input.DryRun {
		return d.synthetic(name, post)
	}

	creds, err := credential.ResolveAll(ctx, d.resolver, target.Config.Credentials)
	if err != nil {
		logger.Error("platform credentials unavailable", slog.Any("error", err))
		return &distributionDomain.PlatformResult{
			Platform: name,
			Outcome:  distributionDomain.OutcomeTerminalFailure,
			Error:    err.Error(),
			Attempts: []distributionDomain.Attempt{},
		}
	}

	attempts := make([]distributionDomain.Attempt, 0, target.Config.MaxAttempts)
	operation := func() (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, target.Config.Timeout)
		defer cancel()

		externalID, err := target.Adapter.Post(attemptCtx, post, creds)
		attempt := distributionDomain.Attempt{
			RecordID:      post.RecordID,
			Platform:      name,
			AttemptNumber: len(attempts) + 1,
			At:            d.now(),
		}
		switch {
		case err == nil:
			attempt.Outcome = distributionDomain.OutcomeSuccess
			attempt.ExternalID = externalID
		case distributionDomain.IsRetryable(err):
			attempt.Outcome = distributionDomain.OutcomeRetryableFailure
			attempt.Error = err.Error()
		default:
			attempt.Outcome = distributionDomain.OutcomeTerminalFailure
			attempt.Error = err.Error()
		}
		attempts = append(attempts, attempt)

		if err != nil && !distributionDomain.IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return externalID, err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("platform post failed, retrying",
			slog.Int("attempt", len(attempts)),
			slog.Duration("backoff", next),
			slog.Any("error", err),
		)
	}

	externalID, err := backoff.RetryNotifyWithTimerAndData(
		operation,
		newBackOff(ctx, target.Config),
		notify,
		d.newTimer(),
	)
	if err != nil {
		logger.Error("platform post failed",
			slog.Int("attempts", len(attempts)),
			slog.Any("error", err),
		)
		return &distributionDomain.PlatformResult{
			Platform: name,
			Outcome:  distributionDomain.OutcomeTerminalFailure,
			Error:    fmt.Sprintf("after %d attempt(s): %v", len(attempts), err),
			Attempts: attempts,
		}
	}

	logger.Info("platform post succeeded", slog.String("external_id", externalID), slog.Int("attempts", len(attempts)))
	return &distributionDomain.PlatformResult{
		Platform:   name,
		Outcome:    distributionDomain.OutcomeSuccess,
		ExternalID: externalID,
		Attempts:   attempts,
	}
}

func (d *distributionUseCase) synthetic(name string, post distributionDomain.PostInput) *distributionDomain.PlatformResult {
	externalID := fmt.Sprintf("dry-run-%s-%s", name, post.RecordID)
	return &distributionDomain.PlatformResult{
		Platform:   name,
		Outcome:    distributionDomain.OutcomeSuccess,
		ExternalID: externalID,
		Synthetic:  true,
		Attempts: []distributionDomain.Attempt{{
			RecordID:      post.RecordID,
			Platform:      name,
			AttemptNumber: 1,
			Outcome:       distributionDomain.OutcomeSuccess,
			ExternalID:    externalID,
			At:            d.now(),
		}},
	}
}
