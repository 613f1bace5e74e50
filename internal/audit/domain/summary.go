package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxSummarySamples caps the error and success lists carried in a Summary.
const MaxSummarySamples = 20

// Summary aggregates a cycle's events.
type Summary struct {
	RunID      uuid.UUID      `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	ByLevel    map[Level]int  `json:"by_level"`
	ByCategory map[string]int `json:"by_category"`
	Errors     []Event        `json:"errors"`
	Successes  []Event        `json:"successes"`
	// Truncated reports that more errors or successes happened than the lists hold.
	Truncated bool `json:"truncated,omitempty"`
}

// Summarize builds a summary from events in their recorded order.
func Summarize(runID uuid.UUID, startedAt time.Time, events []Event) *Summary {
	summary := &Summary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: startedAt,
		ByLevel:    make(map[Level]int, len(Levels)),
		ByCategory: make(map[string]int),
		Errors:     []Event{},
		Successes:  []Event{},
	}

	for _, event := range events {
		summary.Total++
		summary.ByLevel[event.Level]++
		summary.ByCategory[event.Category]++
		if event.Timestamp.After(summary.FinishedAt) {
			summary.FinishedAt = event.Timestamp
		}

		switch event.Level {
		case LevelError:
			summary.Errors, summary.Truncated = appendSample(summary.Errors, event, summary.Truncated)
		case LevelSuccess:
			summary.Successes, summary.Truncated = appendSample(summary.Successes, event, summary.Truncated)
		}
	}
	return summary
}

func appendSample(samples []Event, event Event, truncated bool) ([]Event, bool) {
	if len(samples) >= MaxSummarySamples {
		return samples, true
	}
	return append(samples, event), truncated
}

// Count returns the number of events at level.
func (s *Summary) Count(level Level) int {
	return s.ByLevel[level]
}
