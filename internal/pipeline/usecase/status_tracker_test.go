package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
)

func TestStatusTracker(t *testing.T) {
	tracker := NewStatusTracker()
	assert.False(t, tracker.Snapshot().Running)
	assert.NotNil(t, tracker.Snapshot().RecentErrors)

	runID := uuid.New()
	tracker.Begin(runID)
	snapshot := tracker.Snapshot()
	assert.True(t, snapshot.Running)
	require.NotNil(t, snapshot.CurrentRunID)
	assert.Equal(t, runID, *snapshot.CurrentRunID)

	report := pipelineDomain.NewCycleReport(runID, time.Now(), false, false)
	report.Add(pipelineDomain.RecordReport{RecordID: "A", Outcome: pipelineDomain.OutcomeFailed, Error: "boom"})
	tracker.Finish(report, nil)

	snapshot = tracker.Snapshot()
	assert.False(t, snapshot.Running)
	assert.Nil(t, snapshot.CurrentRunID)
	assert.Equal(t, 1, snapshot.CyclesCompleted)
	require.NotNil(t, snapshot.LastCycle)
	assert.Equal(t, 1, snapshot.LastCycle.Failed)
	assert.Equal(t, []string{"A: boom"}, snapshot.RecentErrors)

	tracker.Begin(uuid.New())
	tracker.Finish(nil, errors.New("source unavailable"))
	snapshot = tracker.Snapshot()
	assert.Equal(t, 1, snapshot.CyclesFailed)
	assert.Equal(t, "source unavailable", snapshot.LastError)

	for i := range 20 {
		tracker.Finish(nil, fmt.Errorf("failure %d", i))
	}
	snapshot = tracker.Snapshot()
	assert.Len(t, snapshot.RecentErrors, pipelineDomain.MaxRecentErrors)
	assert.Equal(t, "failure 19", snapshot.RecentErrors[pipelineDomain.MaxRecentErrors-1])
}
