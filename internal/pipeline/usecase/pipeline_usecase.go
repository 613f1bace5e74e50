package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	auditUseCase "github.com/allisson/reelcast/internal/audit/usecase"
	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	distributionUseCase "github.com/allisson/reelcast/internal/distribution/usecase"
	apperrors "github.com/allisson/reelcast/internal/errors"
	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	generationUseCase "github.com/allisson/reelcast/internal/generation/usecase"
	ledgerUseCase "github.com/allisson/reelcast/internal/ledger/usecase"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
	lockUseCase "github.com/allisson/reelcast/internal/lock/usecase"
	"github.com/allisson/reelcast/internal/mapping"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
	sourceService "github.com/allisson/reelcast/internal/source/service"
)

// Config holds pipeline settings.
type Config struct {
	SourceURL string
	// LockTTL must exceed the worst-case duration of one record.
	LockTTL time.Duration
	// AcceptPartial commits records with at least one platform success to the ledger.
	AcceptPartial bool
	DryRun        bool
	Force         bool
	// CycleBudget stops starting new records once a cycle has run this long. Zero disables it.
	CycleBudget time.Duration
	// PersistAudit appends the cycle's events to the audit store when the cycle ends.
	PersistAudit bool
}

// Dependencies are the collaborators driven by the pipeline.
type Dependencies struct {
	Source     CandidateSource
	Locks      lockUseCase.LockUseCase
	Ledger     ledgerUseCase.LedgerUseCase
	Mapper     ParameterMapper
	Generation generationUseCase.GenerationUseCase
	// DryRunGeneration replaces Generation on dry runs and must not touch the network.
	DryRunGeneration generationUseCase.GenerationUseCase
	Distribution     distributionUseCase.DistributionUseCase
	// Writeback is optional.
	Writeback WritebackSink
	Audit     auditUseCase.AuditLogger
	// AuditStore is optional.
	AuditStore auditUseCase.AuditUseCase
	Status     *StatusTracker
}

// Option customizes the pipeline.
type Option func(*pipelineUseCase)

// WithClock replaces the clock used for budgets and durations.
func WithClock(now func() time.Time) Option {
	return func(p *pipelineUseCase) {
		p.now = now
	}
}

type pipelineUseCase struct {
	config  Config
	deps    Dependencies
	logger  *slog.Logger
	now     func() time.Time
	running atomic.Bool
}

// NewPipelineUseCase creates the orchestrator. A nil Status gets a private tracker.
func NewPipelineUseCase(config Config, deps Dependencies, logger *slog.Logger, opts ...Option) PipelineUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Status == nil {
		deps.Status = NewStatusTracker()
	}
	if deps.DryRunGeneration == nil {
		deps.DryRunGeneration = deps.Generation
	}

	p := &pipelineUseCase{
		config: config,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipelineUseCase) DefaultOptions() RunOptions {
	return RunOptions{DryRun: p.config.DryRun, Force: p.config.Force}
}

func (p *pipelineUseCase) RunCycle(ctx context.Context, opts RunOptions) (*pipelineDomain.CycleReport, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, pipelineDomain.ErrCycleInProgress
	}
	defer p.running.Store(false)

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	report := pipelineDomain.NewCycleReport(runID, p.now(), opts.DryRun, opts.Force)
	logger := p.logger.With(slog.String("run_id", runID.String()))

	p.deps.Audit.Clear()
	p.deps.Audit.StartRun(runID)
	p.deps.Status.Begin(runID)

	logger.Info("cycle started", slog.Bool("dry_run", opts.DryRun), slog.Bool("force", opts.Force))
	p.deps.Audit.Info(ctx, auditDomain.CategoryCycle, "", "cycle started", map[string]any{
		"dry_run":   opts.DryRun,
		"force":     opts.Force,
		"platforms": p.deps.Distribution.Platforms(),
		"policy":    string(p.deps.Distribution.Policy()),
	})

	cycleErr := p.runCycle(ctx, logger, report, opts)
	report.FinishedAt = p.now()

	if cycleErr == nil {
		p.deps.Audit.Info(ctx, auditDomain.CategoryCycle, "", "cycle finished", map[string]any{
			"candidates":  report.Candidates,
			"processed":   report.Processed(),
			"distributed": report.Counts[pipelineDomain.OutcomeDistributed],
			"partial":     report.Counts[pipelineDomain.OutcomePartial],
			"failed":      report.Counts[pipelineDomain.OutcomeFailed],
			"skipped":     report.Counts[pipelineDomain.OutcomeSkipped],
			"unvisited":   report.Unvisited,
		})
	}
	report.Summary = p.deps.Audit.Summary()
	p.persistAudit(ctx, logger, runID)

	if cycleErr != nil {
		p.deps.Status.Finish(nil, cycleErr)
		logger.Error("cycle failed", slog.Any("error", cycleErr))
		return nil, cycleErr
	}

	p.deps.Status.Finish(report, nil)
	logger.Info("cycle finished",
		slog.Int("candidates", report.Candidates),
		slog.Int("processed", report.Processed()),
		slog.Int("distributed", report.Counts[pipelineDomain.OutcomeDistributed]),
		slog.Int("partial", report.Counts[pipelineDomain.OutcomePartial]),
		slog.Int("failed", report.Counts[pipelineDomain.OutcomeFailed]),
		slog.Int("skipped", report.Counts[pipelineDomain.OutcomeSkipped]),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (p *pipelineUseCase) Start(ctx context.Context, interval time.Duration, opts RunOptions) error {
	return runEvery(ctx, interval, p.logger, func(ctx context.Context) error {
		_, err := p.RunCycle(ctx, opts)
		return err
	})
}

// runEvery calls cycle immediately and then on every tick until ctx is done. Cycle errors
// are logged and never stop the loop.
func runEvery(ctx context.Context, interval time.Duration, logger *slog.Logger, cycle func(context.Context) error) error {
	if interval <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "cycle interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := cycle(ctx); err != nil && ctx.Err() == nil {
			logger.Error("cycle ended with error", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			logger.Info("continuous mode stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *pipelineUseCase) runCycle(
	ctx context.Context,
	logger *slog.Logger,
	report *pipelineDomain.CycleReport,
	opts RunOptions,
) error {
	records, diag, err := p.deps.Source.Fetch(ctx, p.config.SourceURL, sourceService.FetchOptions{Force: opts.Force})
	if err != nil {
		p.deps.Audit.Error(ctx, auditDomain.CategorySource, "", "source fetch failed", errorDetails(err))
		return err
	}

	report.Diagnostic = diag
	report.Candidates = len(records)

	if len(records) == 0 {
		p.deps.Audit.Warn(ctx, auditDomain.CategorySource, "", "no candidate records", diagnosticDetails(diag))
		return nil
	}
	p.deps.Audit.Info(ctx, auditDomain.CategorySource, "", "candidates fetched", diagnosticDetails(diag))

	for i, record := range records {
		if reason := p.stopReason(ctx, report, opts, i); reason != "" {
			report.Unvisited = len(records) - i
			p.deps.Audit.Warn(ctx, auditDomain.CategoryCycle, "", "remaining records left for the next cycle",
				map[string]any{"reason": reason, "unvisited": report.Unvisited})
			logger.Warn("stopping cycle early", slog.String("reason", reason), slog.Int("unvisited", report.Unvisited))
			break
		}

		started := p.now()
		result := p.processRecord(ctx, logger.With(slog.String("record_id", record.RecordID)), record, opts)
		result.Duration = p.now().Sub(started)
		report.Add(result)
	}
	return nil
}

func (p *pipelineUseCase) stopReason(
	ctx context.Context,
	report *pipelineDomain.CycleReport,
	opts RunOptions,
	index int,
) string {
	switch {
	case ctx.Err() != nil:
		return pipelineDomain.SkipReasonCanceled
	case opts.Limit > 0 && index >= opts.Limit:
		return pipelineDomain.SkipReasonLimit
	case p.config.CycleBudget > 0 && p.now().Sub(report.StartedAt) >= p.config.CycleBudget:
		report.BudgetExhausted = true
		return pipelineDomain.SkipReasonBudget
	default:
		return ""
	}
}

// processRecord drives one record through the pipeline. The lock is always released.
func (p *pipelineUseCase) processRecord(
	ctx context.Context,
	logger *slog.Logger,
	record sourceDomain.ProductRecord,
	opts RunOptions,
) pipelineDomain.RecordReport {
	audit := p.deps.Audit
	id := record.RecordID
	result := pipelineDomain.RecordReport{RecordID: id}

	lock, err := p.deps.Locks.Acquire(ctx, id, p.config.LockTTL, map[string]string{"run_id": audit.RunID().String()})
	if err != nil {
		if apperrors.Is(err, lockDomain.ErrAlreadyLocked) {
			audit.Skip(ctx, auditDomain.CategoryLock, id, "record locked by another execution", nil)
			return skipped(result, pipelineDomain.SkipReasonLocked)
		}
		audit.Error(ctx, auditDomain.CategoryLock, id, "failed to acquire lock", errorDetails(err))
		return failed(result, err)
	}
	defer func() {
		if err := p.deps.Locks.Release(context.WithoutCancel(ctx), lock); err != nil {
			logger.Warn("failed to release lock", slog.Any("error", err))
		}
	}()

	if !opts.Force {
		processed, err := p.deps.Ledger.HasProcessed(ctx, id)
		if err != nil {
			audit.Error(ctx, auditDomain.CategoryLedger, id, "ledger check failed", errorDetails(err))
			return failed(result, err)
		}
		if processed {
			audit.Skip(ctx, auditDomain.CategoryLedger, id, "record already processed", nil)
			return skipped(result, pipelineDomain.SkipReasonProcessed)
		}
	}

	params := p.deps.Mapper.Map(record)
	result.Parameters = &params
	audit.Info(ctx, auditDomain.CategoryMapping, id, "generation parameters chosen", map[string]any{
		"avatar":           params.Avatar,
		"voice":            params.Voice,
		"duration_seconds": params.DurationSeconds,
		"reason":           params.Reason,
	})

	generation := p.deps.Generation
	if opts.DryRun {
		generation = p.deps.DryRunGeneration
	}
	generated, err := generation.Generate(ctx, record, params)
	if err != nil {
		audit.Error(ctx, auditDomain.CategoryGeneration, id, generationFailure(err), errorDetails(err))
		logger.Error("asset generation failed", slog.Any("error", err))
		return failed(result, err)
	}
	result.JobID = generated.JobID
	result.AssetURL = generated.AssetURL
	if generated.ScriptDegraded {
		audit.Warn(ctx, auditDomain.CategoryGeneration, id, "script service unavailable, used record text", nil)
	}
	audit.Success(ctx, auditDomain.CategoryGeneration, id, "asset ready", map[string]any{
		"job_id":    generated.JobID,
		"asset_url": generated.AssetURL,
	})

	dist, err := p.deps.Distribution.Distribute(ctx, distributionUseCase.DistributeInput{
		Record:   record,
		AssetURL: generated.AssetURL,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		audit.Error(ctx, auditDomain.CategoryDistribution, id, "distribution failed", errorDetails(err))
		return failed(result, err)
	}
	result.Distribution = dist
	p.auditPlatforms(ctx, id, dist)

	policy := p.deps.Distribution.Policy()
	distributed := dist.Distributed(policy)
	succeeded := len(dist.Successes()) > 0
	commit := distributed || (p.config.AcceptPartial && succeeded)

	switch {
	case distributed:
		result.Outcome = pipelineDomain.OutcomeDistributed
	case succeeded:
		result.Outcome = pipelineDomain.OutcomePartial
		result.Reason = fmt.Sprintf("distribution policy %q not satisfied", policy)
	default:
		result.Outcome = pipelineDomain.OutcomeFailed
		result.Error = "no platform accepted the asset"
	}

	if !opts.DryRun {
		p.writeback(ctx, logger, record, sourceDomain.WritebackPayload{
			AssetURL: generated.AssetURL,
			Mapping:  describeParameters(params),
			Results:  dist.Summary(),
			Posted:   commit,
		})
	}

	if commit {
		switch {
		case opts.DryRun:
			audit.Info(ctx, auditDomain.CategoryLedger, id, "dry run, ledger not updated", nil)
		default:
			if err := p.deps.Ledger.MarkProcessed(ctx, id, ledgerSummary(audit.RunID(), generated, dist)); err != nil {
				audit.Error(ctx, auditDomain.CategoryLedger, id, "failed to record processed record", errorDetails(err))
				result.Error = err.Error()
			} else {
				result.Committed = true
			}
		}
	}

	details := map[string]any{
		"outcome":   string(result.Outcome),
		"successes": dist.Successes(),
		"failures":  dist.Failures(),
		"committed": result.Committed,
	}
	switch result.Outcome {
	case pipelineDomain.OutcomeDistributed:
		audit.Success(ctx, auditDomain.CategoryRecord, id, "record distributed", details)
	case pipelineDomain.OutcomePartial:
		audit.Warn(ctx, auditDomain.CategoryRecord, id, "record partially distributed", details)
	default:
		audit.Error(ctx, auditDomain.CategoryRecord, id, "record not distributed", details)
	}
	return result
}

func (p *pipelineUseCase) auditPlatforms(ctx context.Context, recordID string, dist *distributionDomain.Result) {
	for _, name := range dist.Names() {
		platform := dist.Platforms[name]
		details := map[string]any{
			"platform": name,
			"attempts": len(platform.Attempts),
		}
		if platform.Synthetic {
			details["synthetic"] = true
		}
		if platform.Outcome == distributionDomain.OutcomeSuccess {
			details["external_id"] = platform.ExternalID
			p.deps.Audit.Success(ctx, auditDomain.CategoryDistribution, recordID, "posted to "+name, details)
			continue
		}
		details["outcome"] = string(platform.Outcome)
		details["error"] = platform.Error
		p.deps.Audit.Error(ctx, auditDomain.CategoryDistribution, recordID, "posting to "+name+" failed", details)
	}
}

// writeback is best effort: failures are audited and never change the record outcome.
func (p *pipelineUseCase) writeback(
	ctx context.Context,
	logger *slog.Logger,
	record sourceDomain.ProductRecord,
	payload sourceDomain.WritebackPayload,
) {
	if p.deps.Writeback == nil || !p.deps.Writeback.Enabled() {
		return
	}
	if err := p.deps.Writeback.Writeback(ctx, record, payload); err != nil {
		p.deps.Audit.Warn(ctx, auditDomain.CategoryWriteback, record.RecordID, "writeback failed", errorDetails(err))
		logger.Warn("writeback failed", slog.Any("error", err))
		return
	}
	p.deps.Audit.Info(ctx, auditDomain.CategoryWriteback, record.RecordID, "source row updated", nil)
}

func (p *pipelineUseCase) persistAudit(ctx context.Context, logger *slog.Logger, runID uuid.UUID) {
	if !p.config.PersistAudit || p.deps.AuditStore == nil {
		return
	}

	var events []auditDomain.Event
	for _, event := range p.deps.Audit.Events() {
		if event.RunID == runID {
			events = append(events, event)
		}
	}

	count, err := p.deps.AuditStore.Persist(context.WithoutCancel(ctx), events)
	if err != nil {
		logger.Warn("failed to persist audit events", slog.Any("error", err))
		return
	}
	logger.Debug("audit events persisted", slog.Int("count", count))
}

func skipped(result pipelineDomain.RecordReport, reason string) pipelineDomain.RecordReport {
	result.Outcome = pipelineDomain.OutcomeSkipped
	result.Reason = reason
	return result
}

func failed(result pipelineDomain.RecordReport, err error) pipelineDomain.RecordReport {
	result.Outcome = pipelineDomain.OutcomeFailed
	result.Error = err.Error()
	return result
}

func generationFailure(err error) string {
	if apperrors.Is(err, generationDomain.ErrGenerationTimeout) {
		return "asset generation timed out"
	}
	return "asset generation failed"
}

func errorDetails(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func diagnosticDetails(diag *sourceDomain.Diagnostic) map[string]any {
	if diag == nil {
		return nil
	}
	dropped := make(map[string]int, len(diag.Dropped))
	for reason, count := range diag.Dropped {
		dropped[string(reason)] = count
	}
	return map[string]any{
		"total_rows": diag.TotalRows,
		"kept":       diag.Kept,
		"dropped":    dropped,
		"samples":    diag.Samples,
	}
}

func describeParameters(params mapping.Parameters) string {
	return fmt.Sprintf("%s / %s / %ds (%s)", params.Avatar, params.Voice, params.DurationSeconds, params.Reason)
}

func ledgerSummary(
	runID uuid.UUID,
	generated *generationDomain.Result,
	dist *distributionDomain.Result,
) map[string]string {
	summary := map[string]string{
		"run_id":    runID.String(),
		"job_id":    generated.JobID,
		"asset_url": generated.AssetURL,
	}
	for name, value := range dist.Summary() {
		summary["platform."+name] = value
	}
	return summary
}
