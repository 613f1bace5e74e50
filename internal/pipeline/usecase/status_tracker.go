package usecase

import (
	"sync"

	"github.com/google/uuid"

	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
)

// StatusTracker keeps the read-only status snapshot shared between the pipeline and
// the status server.
type StatusTracker struct {
	mu     sync.RWMutex
	status pipelineDomain.Status
}

// NewStatusTracker creates an idle tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: pipelineDomain.Status{RecentErrors: []string{}}}
}

// Begin marks a cycle as running.
func (s *StatusTracker) Begin(runID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Running = true
	id := runID
	s.status.CurrentRunID = &id
}

// Finish records a cycle's outcome. A nil report with err marks the cycle as failed.
func (s *StatusTracker) Finish(report *pipelineDomain.CycleReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Running = false
	s.status.CurrentRunID = nil

	if err != nil {
		s.status.CyclesFailed++
		s.status.LastError = err.Error()
		s.pushErrors(err.Error())
	} else {
		s.status.CyclesCompleted++
		s.status.LastError = ""
	}

	if report != nil {
		counters := pipelineDomain.CountersFrom(report)
		s.status.LastCycle = &counters
		s.pushErrors(report.Errors()...)
	}
}

// Snapshot returns a copy of the current status.
func (s *StatusTracker) Snapshot() pipelineDomain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.status
	snapshot.RecentErrors = append([]string{}, s.status.RecentErrors...)
	if s.status.LastCycle != nil {
		last := *s.status.LastCycle
		snapshot.LastCycle = &last
	}
	if s.status.CurrentRunID != nil {
		id := *s.status.CurrentRunID
		snapshot.CurrentRunID = &id
	}
	return snapshot
}

func (s *StatusTracker) pushErrors(errs ...string) {
	s.status.RecentErrors = append(s.status.RecentErrors, errs...)
	if overflow := len(s.status.RecentErrors) - pipelineDomain.MaxRecentErrors; overflow > 0 {
		s.status.RecentErrors = append([]string{}, s.status.RecentErrors[overflow:]...)
	}
}
