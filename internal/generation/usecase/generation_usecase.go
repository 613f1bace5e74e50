package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/allisson/reelcast/internal/errors"
	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// Config holds polling configuration.
type Config struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Clock abstracts time so polling deadlines are testable.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type generationUseCase struct {
	config Config
	script ScriptGenerator
	assets AssetGenerator
	prober Prober
	clock  Clock
	logger *slog.Logger
}

// NewGenerationUseCase creates the generation orchestrator. A nil clock uses wall time.
func NewGenerationUseCase(
	config Config,
	script ScriptGenerator,
	assets AssetGenerator,
	prober Prober,
	clock Clock,
	logger *slog.Logger,
) GenerationUseCase {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &generationUseCase{
		config: config,
		script: script,
		assets: assets,
		prober: prober,
		clock:  clock,
		logger: logger,
	}
}

func (u *generationUseCase) Generate(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (*generationDomain.Result, error) {
	script, degraded, err := u.GenerateScript(ctx, record, params)
	if err != nil {
		return nil, err
	}

	request := generationDomain.AssetRequest{
		RecordID:   record.RecordID,
		Title:      record.Title,
		ScriptText: script,
		Parameters: params,
	}
	jobID, err := u.GenerateAsset(ctx, request)
	if err != nil {
		return nil, err
	}

	assetURL, err := u.PollUntilReady(ctx, jobID, u.config.PollTimeout, u.config.PollInterval)
	if err != nil {
		return nil, err
	}

	return &generationDomain.Result{
		RecordID:       record.RecordID,
		ScriptText:     script,
		ScriptDegraded: degraded,
		Parameters:     params,
		JobID:          jobID,
		AssetURL:       assetURL,
		Status:         generationDomain.StatusReady,
	}, nil
}

func (u *generationUseCase) GenerateScript(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (string, bool, error) {
	if u.script != nil {
		script, err := u.script.Generate(ctx, record, params)
		if err == nil && strings.TrimSpace(script) != "" {
			return script, false, nil
		}
		if err != nil && ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		u.logger.Warn("script generation degraded to record text",
			slog.String("record_id", record.RecordID),
			slog.Any("error", err),
		)
	}

	for _, fallback := range []string{record.Description, record.Title} {
		if text := strings.TrimSpace(fallback); text != "" {
			return text, true, nil
		}
	}
	return "", true, fmt.Errorf("%w: record has no text to narrate", generationDomain.ErrGenerationFailed)
}

func (u *generationUseCase) GenerateAsset(ctx context.Context, request generationDomain.AssetRequest) (string, error) {
	jobID, err := u.assets.Submit(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", generationDomain.ErrGenerationFailed, err)
	}

	u.logger.Info("render job submitted",
		slog.String("record_id", request.RecordID),
		slog.String("job_id", jobID),
	)
	return jobID, nil
}

// PollUntilReady polls at a fixed interval until the job is ready, fails, or timeout
// elapses. Poll errors are treated as transient. A ready job whose URL does not answer
// the probe is reported as failed.
func (u *generationUseCase) PollUntilReady(
	ctx context.Context,
	jobID string,
	timeout, interval time.Duration,
) (string, error) {
	if interval <= 0 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "poll interval must be positive")
	}
	deadline := u.clock.Now().Add(timeout)
	polls := 0

	for {
		polls++
		status, err := u.assets.Poll(ctx, jobID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			u.logger.Warn("render job poll failed",
				slog.String("job_id", jobID),
				slog.Int("poll", polls),
				slog.Any("error", err),
			)
		case status.Status == generationDomain.StatusFailed:
			return "", fmt.Errorf("%w: job %s reported %q: %s",
				generationDomain.ErrGenerationFailed, jobID, status.Raw, status.Error)
		case status.Status == generationDomain.StatusReady:
			return u.confirmReady(ctx, jobID, status.AssetURL)
		default:
			u.logger.Debug("render job in progress",
				slog.String("job_id", jobID),
				slog.String("status", string(status.Status)),
				slog.Int("poll", polls),
			)
		}

		remaining := deadline.Sub(u.clock.Now())
		if remaining <= 0 {
			return "", fmt.Errorf("%w: job %s after %s (%d polls)", generationDomain.ErrGenerationTimeout, jobID, timeout, polls)
		}

		// The last wait is shortened so no poll lands after the deadline.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-u.clock.After(min(interval, remaining)):
		}
	}
}

func (u *generationUseCase) confirmReady(ctx context.Context, jobID, assetURL string) (string, error) {
	if assetURL == "" {
		return "", fmt.Errorf("%w: job %s is ready without an asset url", generationDomain.ErrGenerationFailed, jobID)
	}
	if err := u.prober.Probe(ctx, assetURL); err != nil {
		return "", fmt.Errorf("%w: job %s: %v", generationDomain.ErrGenerationFailed, jobID, err)
	}
	return assetURL, nil
}
