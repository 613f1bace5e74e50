package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

func TestCycleReport_Add(t *testing.T) {
	report := NewCycleReport(uuid.New(), time.Now(), false, false)

	dist := distributionDomain.NewResult("A", false)
	dist.Platforms["tiktok"] = &distributionDomain.PlatformResult{Outcome: distributionDomain.OutcomeSuccess}
	dist.Platforms["instagram"] = &distributionDomain.PlatformResult{Outcome: distributionDomain.OutcomeTerminalFailure}

	report.Add(RecordReport{RecordID: "A", Outcome: OutcomeDistributed, Distribution: dist})
	report.Add(RecordReport{RecordID: "B", Outcome: OutcomeSkipped, Reason: SkipReasonLocked})
	report.Add(RecordReport{RecordID: "C", Outcome: OutcomeFailed, Error: "asset generation timed out"})

	assert.Equal(t, 2, report.Processed())
	assert.Equal(t, 1, report.Counts[OutcomeDistributed])
	assert.Equal(t, 1, report.PlatformSuccesses)
	assert.Equal(t, 1, report.PlatformFailures)
	assert.Equal(t, []string{"C: asset generation timed out"}, report.Errors())

	counters := CountersFrom(report)
	assert.Equal(t, 2, counters.Processed)
	assert.Equal(t, 1, counters.Skipped)
	assert.Equal(t, 1, counters.Failed)
}
