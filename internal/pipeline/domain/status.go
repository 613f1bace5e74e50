package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxRecentErrors caps Status.RecentErrors.
const MaxRecentErrors = 10

// CycleCounters are the last cycle's headline numbers.
type CycleCounters struct {
	RunID             uuid.UUID `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	DryRun            bool      `json:"dry_run"`
	Candidates        int       `json:"candidates"`
	Processed         int       `json:"processed"`
	Distributed       int       `json:"distributed"`
	Partial           int       `json:"partial"`
	Failed            int       `json:"failed"`
	Skipped           int       `json:"skipped"`
	PlatformSuccesses int       `json:"platform_successes"`
	PlatformFailures  int       `json:"platform_failures"`
	BudgetExhausted   bool      `json:"budget_exhausted"`
}

// CountersFrom extracts the headline numbers from a report.
func CountersFrom(report *CycleReport) CycleCounters {
	return CycleCounters{
		RunID:             report.RunID,
		StartedAt:         report.StartedAt,
		FinishedAt:        report.FinishedAt,
		DryRun:            report.DryRun,
		Candidates:        report.Candidates,
		Processed:         report.Processed(),
		Distributed:       report.Counts[OutcomeDistributed],
		Partial:           report.Counts[OutcomePartial],
		Failed:            report.Counts[OutcomeFailed],
		Skipped:           report.Counts[OutcomeSkipped],
		PlatformSuccesses: report.PlatformSuccesses,
		PlatformFailures:  report.PlatformFailures,
		BudgetExhausted:   report.BudgetExhausted,
	}
}

// Status is the read-only snapshot served by the status endpoint.
type Status struct {
	Running         bool           `json:"running"`
	CurrentRunID    *uuid.UUID     `json:"current_run_id,omitempty"`
	CyclesCompleted int            `json:"cycles_completed"`
	CyclesFailed    int            `json:"cycles_failed"`
	LastCycle       *CycleCounters `json:"last_cycle,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	RecentErrors    []string       `json:"recent_errors"`
}
