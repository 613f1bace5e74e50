// Package domain defines distribution attempts, per-platform outcomes, the distribution
// policy and the platform configuration shared by adapters and the coordinator.
package domain

import (
	"sort"
	"strings"
	"time"
)

// Outcome classifies a single attempt or a platform's final result.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeRetryableFailure Outcome = "retryable_failure"
	OutcomeTerminalFailure  Outcome = "terminal_failure"
)

// Policy decides when a record counts as distributed.
type Policy string

const (
	// PolicyAny requires at least one successful platform.
	PolicyAny Policy = "any"
	// PolicyAll requires every attempted platform to succeed.
	PolicyAll Policy = "all"
)

// ParsePolicy parses a policy name, defaulting to PolicyAny for empty input.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyAny:
		return PolicyAny, nil
	case PolicyAll:
		return PolicyAll, nil
	default:
		return "", ErrInvalidPolicy
	}
}

// PostInput is what every platform adapter receives.
type PostInput struct {
	RecordID string
	Title    string
	AssetURL string
	Caption  string
}

// Attempt records one call to a platform.
type Attempt struct {
	RecordID      string    `json:"record_id"`
	Platform      string    `json:"platform"`
	AttemptNumber int       `json:"attempt_number"`
	Outcome       Outcome   `json:"outcome"`
	ExternalID    string    `json:"external_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

// PlatformResult is the final outcome for one platform after retries.
type PlatformResult struct {
	Platform   string    `json:"platform"`
	Outcome    Outcome   `json:"outcome"`
	ExternalID string    `json:"external_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	Attempts   []Attempt `json:"attempts"`
	Synthetic  bool      `json:"synthetic,omitempty"`
}

// Result aggregates the per-platform outcomes for one record.
type Result struct {
	RecordID  string                     `json:"record_id"`
	Platforms map[string]*PlatformResult `json:"platforms"`
	DryRun    bool                       `json:"dry_run"`
}

// NewResult creates an empty result for recordID.
func NewResult(recordID string, dryRun bool) *Result {
	return &Result{RecordID: recordID, Platforms: make(map[string]*PlatformResult), DryRun: dryRun}
}

// Names returns the platform names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Platforms))
	for name := range r.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Successes returns the sorted names of platforms that succeeded.
func (r *Result) Successes() []string {
	var names []string
	for _, name := range r.Names() {
		if r.Platforms[name].Outcome == OutcomeSuccess {
			names = append(names, name)
		}
	}
	return names
}

// Failures returns the sorted names of platforms that did not succeed.
func (r *Result) Failures() []string {
	var names []string
	for _, name := range r.Names() {
		if r.Platforms[name].Outcome != OutcomeSuccess {
			names = append(names, name)
		}
	}
	return names
}

// Distributed applies policy. A result with no platforms is never distributed.
func (r *Result) Distributed(policy Policy) bool {
	if len(r.Platforms) == 0 {
		return false
	}
	successes := len(r.Successes())
	if policy == PolicyAll {
		return successes == len(r.Platforms)
	}
	return successes > 0
}

// Summary renders platform → external id or outcome text, for writeback and the ledger.
func (r *Result) Summary() map[string]string {
	summary := make(map[string]string, len(r.Platforms))
	for name, platform := range r.Platforms {
		if platform.Outcome == OutcomeSuccess {
			summary[name] = platform.ExternalID
			continue
		}
		summary[name] = string(platform.Outcome) + ": " + platform.Error
	}
	return summary
}
