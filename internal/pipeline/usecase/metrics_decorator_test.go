package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/reelcast/internal/metrics"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

type stubPipeline struct {
	report *pipelineDomain.CycleReport
	err    error
	calls  int
}

func (s *stubPipeline) RunCycle(context.Context, RunOptions) (*pipelineDomain.CycleReport, error) {
	s.calls++
	return s.report, s.err
}

func (s *stubPipeline) Start(context.Context, time.Duration, RunOptions) error { return nil }

func (s *stubPipeline) DefaultOptions() RunOptions { return RunOptions{Force: true} }

func TestPipelineMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("records one operation per record outcome", func(t *testing.T) {
		report := pipelineDomain.NewCycleReport(uuid.New(), time.Now(), false, false)
		report.Add(pipelineDomain.RecordReport{RecordID: "A", Outcome: pipelineDomain.OutcomeDistributed})
		report.Add(pipelineDomain.RecordReport{RecordID: "B", Outcome: pipelineDomain.OutcomeSkipped})
		report.BudgetExhausted = true

		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "pipeline", "record", "distributed").Once()
		m.On("RecordOperation", ctx, "pipeline", "record", "skipped").Once()
		m.On("RecordOperation", ctx, "pipeline", "budget_exhausted", "warning").Once()
		m.On("RecordOperation", ctx, "pipeline", "run_cycle", "success").Once()
		m.On("RecordDuration", ctx, "pipeline", "run_cycle", mock.AnythingOfType("time.Duration"), "success").Once()

		decorated := NewPipelineUseCaseWithMetrics(&stubPipeline{report: report}, m, discard)
		got, err := decorated.RunCycle(ctx, RunOptions{})
		require.NoError(t, err)
		assert.Same(t, report, got)
		m.AssertExpectations(t)
	})

	t.Run("records failed cycles", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "pipeline", "run_cycle", "error").Once()
		m.On("RecordDuration", ctx, "pipeline", "run_cycle", mock.AnythingOfType("time.Duration"), "error").Once()

		decorated := NewPipelineUseCaseWithMetrics(&stubPipeline{err: errors.New("source down")}, m, discard)
		_, err := decorated.RunCycle(ctx, RunOptions{})
		assert.Error(t, err)
		m.AssertExpectations(t)
	})

	t.Run("start runs instrumented cycles", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", mock.Anything, "pipeline", "run_cycle", "error").Once()
		m.On("RecordDuration", mock.Anything, "pipeline", "run_cycle", mock.Anything, "error").Once()

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		stub := &stubPipeline{err: errors.New("source down")}
		decorated := NewPipelineUseCaseWithMetrics(stub, m, discard)
		require.NoError(t, decorated.Start(canceled, time.Hour, RunOptions{}))
		assert.Equal(t, 1, stub.calls)
		assert.Equal(t, RunOptions{Force: true}, decorated.DefaultOptions())
		m.AssertExpectations(t)
	})
}
