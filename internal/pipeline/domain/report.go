// Package domain defines the per-record and per-cycle reports produced by the pipeline and
// the status snapshot served to operators.
package domain

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// Outcome is the final state of one record within a cycle.
type Outcome string

const (
	// OutcomeDistributed means the distribution policy was satisfied.
	OutcomeDistributed Outcome = "distributed"
	// OutcomePartial means some but not enough platforms succeeded.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the record could not be generated or posted anywhere.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the record was not worked on (locked or already processed).
	OutcomeSkipped Outcome = "skipped"
)

// Skip reasons.
const (
	SkipReasonLocked    = "locked"
	SkipReasonProcessed = "already_processed"
	SkipReasonBudget    = "cycle_budget_exhausted"
	SkipReasonCanceled  = "canceled"
	SkipReasonLimit     = "limit_reached"
)

// RecordReport describes what happened to one record.
type RecordReport struct {
	RecordID     string                     `json:"record_id"`
	Outcome      Outcome                    `json:"outcome"`
	Reason       string                     `json:"reason,omitempty"`
	Parameters   *mapping.Parameters        `json:"parameters,omitempty"`
	JobID        string                     `json:"job_id,omitempty"`
	AssetURL     string                     `json:"asset_url,omitempty"`
	Distribution *distributionDomain.Result `json:"distribution,omitempty"`
	// Committed reports that a ledger entry was written for the record.
	Committed bool          `json:"committed"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// CycleReport aggregates one pass over the candidate set.
type CycleReport struct {
	RunID      uuid.UUID                `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	DryRun     bool                     `json:"dry_run"`
	Force      bool                     `json:"force"`
	Candidates int                      `json:"candidates"`
	Diagnostic *sourceDomain.Diagnostic `json:"diagnostic,omitempty"`
	Records    []RecordReport           `json:"records"`
	Counts     map[Outcome]int          `json:"counts"`
	// PlatformSuccesses and PlatformFailures count per-platform outcomes across records.
	PlatformSuccesses int  `json:"platform_successes"`
	PlatformFailures  int  `json:"platform_failures"`
	BudgetExhausted   bool `json:"budget_exhausted"`
	// Unvisited counts candidates never started because of the budget, the limit or cancellation.
	Unvisited int                  `json:"unvisited"`
	Summary   *auditDomain.Summary `json:"summary,omitempty"`
}

// NewCycleReport creates an empty report.
func NewCycleReport(runID uuid.UUID, startedAt time.Time, dryRun, force bool) *CycleReport {
	return &CycleReport{
		RunID:     runID,
		StartedAt: startedAt,
		DryRun:    dryRun,
		Force:     force,
		Records:   []RecordReport{},
		Counts:    make(map[Outcome]int),
	}
}

// Add appends a record report and updates the counters.
func (c *CycleReport) Add(record RecordReport) {
	c.Records = append(c.Records, record)
	c.Counts[record.Outcome]++
	if record.Distribution != nil {
		c.PlatformSuccesses += len(record.Distribution.Successes())
		c.PlatformFailures += len(record.Distribution.Failures())
	}
}

// Processed counts records that were worked on, excluding skips.
func (c *CycleReport) Processed() int {
	return len(c.Records) - c.Counts[OutcomeSkipped]
}

// Errors returns the error text of failed records in order.
func (c *CycleReport) Errors() []string {
	var errs []string
	for _, record := range c.Records {
		if record.Error != "" {
			errs = append(errs, record.RecordID+": "+record.Error)
		}
	}
	return errs
}
