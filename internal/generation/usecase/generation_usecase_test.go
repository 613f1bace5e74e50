package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/generation/usecase/mocks"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// fakeClock advances instantly whenever After is called.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

var testParams = mapping.Parameters{Avatar: "coastal_grower", Voice: "calm_female", DurationSeconds: 30, Reason: "kelp"}

func testRecord() sourceDomain.ProductRecord {
	return sourceDomain.ProductRecord{
		RecordID:    "SKU-1",
		Title:       "Organic Kelp Meal Fertilizer",
		Description: "Cold water kelp for vigorous roots",
	}
}

func status(s generationDomain.Status, url string) generationDomain.JobStatus {
	return generationDomain.JobStatus{JobID: "job-1", Status: s, Raw: string(s), AssetURL: url}
}

func TestGenerationUseCase_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		script := &mocks.MockScriptGenerator{}
		assets := &mocks.MockAssetGenerator{}
		prober := &mocks.MockProber{}

		script.On("Generate", ctx, testRecord(), testParams).Return("Meet the kelp your roots crave.", nil)
		assets.On("Submit", ctx, mock.MatchedBy(func(r generationDomain.AssetRequest) bool {
			return r.ScriptText == "Meet the kelp your roots crave." && r.Parameters == testParams
		})).Return("job-1", nil)
		assets.On("Poll", ctx, "job-1").Return(status(generationDomain.StatusRendering, ""), nil).Twice()
		assets.On("Poll", ctx, "job-1").Return(status(generationDomain.StatusReady, "https://cdn.example.com/v.mp4"), nil).Once()
		prober.On("Probe", ctx, "https://cdn.example.com/v.mp4").Return(nil)

		useCase := NewGenerationUseCase(
			Config{PollInterval: 15 * time.Second, PollTimeout: 20 * time.Minute},
			script, assets, prober, newFakeClock(), nil,
		)

		result, err := useCase.Generate(ctx, testRecord(), testParams)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v.mp4", result.AssetURL)
		assert.Equal(t, generationDomain.StatusReady, result.Status)
		assert.False(t, result.ScriptDegraded)
		assets.AssertNumberOfCalls(t, "Poll", 3)
		prober.AssertExpectations(t)
	})

	t.Run("Error_SubmitRejected", func(t *testing.T) {
		assets := &mocks.MockAssetGenerator{}
		assets.On("Submit", ctx, mock.Anything).Return("", errors.New("unexpected status 400"))

		useCase := NewGenerationUseCase(Config{PollInterval: time.Second, PollTimeout: time.Minute},
			nil, assets, &mocks.MockProber{}, newFakeClock(), nil)

		_, err := useCase.Generate(ctx, testRecord(), testParams)
		assert.ErrorIs(t, err, generationDomain.ErrGenerationFailed)
		assets.AssertNotCalled(t, "Poll", mock.Anything, mock.Anything)
	})
}

func TestGenerationUseCase_GenerateScript(t *testing.T) {
	ctx := context.Background()

	t.Run("FallsBackToDescription", func(t *testing.T) {
		script := &mocks.MockScriptGenerator{}
		script.On("Generate", ctx, testRecord(), testParams).Return("", generationDomain.ErrScriptUnavailable)

		useCase := NewGenerationUseCase(Config{}, script, nil, nil, nil, nil)
		text, degraded, err := useCase.GenerateScript(ctx, testRecord(), testParams)

		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Equal(t, "Cold water kelp for vigorous roots", text)
	})

	t.Run("FallsBackToTitleWithoutService", func(t *testing.T) {
		record := testRecord()
		record.Description = ""

		useCase := NewGenerationUseCase(Config{}, nil, nil, nil, nil, nil)
		text, degraded, err := useCase.GenerateScript(ctx, record, testParams)

		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Equal(t, "Organic Kelp Meal Fertilizer", text)
	})

	t.Run("Error_NoText", func(t *testing.T) {
		useCase := NewGenerationUseCase(Config{}, nil, nil, nil, nil, nil)
		_, _, err := useCase.GenerateScript(ctx, sourceDomain.ProductRecord{RecordID: "SKU-9"}, testParams)

		assert.ErrorIs(t, err, generationDomain.ErrGenerationFailed)
	})
}

func TestGenerationUseCase_PollUntilReady(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_Timeout", func(t *testing.T) {
		assets := &mocks.MockAssetGenerator{}
		assets.On("Poll", ctx, "job-1").Return(status(generationDomain.StatusRendering, ""), nil)
		prober := &mocks.MockProber{}

		useCase := NewGenerationUseCase(Config{}, nil, assets, prober, newFakeClock(), nil)
		_, err := useCase.PollUntilReady(ctx, "job-1", time.Minute, 15*time.Second)

		assert.ErrorIs(t, err, generationDomain.ErrGenerationTimeout)
		assets.AssertNumberOfCalls(t, "Poll", 5)
		prober.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
	})

	t.Run("Error_TimeoutIsHardBound", func(t *testing.T) {
		clock := newFakeClock()
		start := clock.Now()
		var polledAt []time.Duration

		assets := &mocks.MockAssetGenerator{}
		assets.On("Poll", ctx, "job-1").
			Run(func(mock.Arguments) { polledAt = append(polledAt, clock.Now().Sub(start)) }).
			Return(status(generationDomain.StatusRendering, ""), nil)

		useCase := NewGenerationUseCase(Config{}, nil, assets, &mocks.MockProber{}, clock, nil)
		_, err := useCase.PollUntilReady(ctx, "job-1", 20*time.Second, 15*time.Second)

		assert.ErrorIs(t, err, generationDomain.ErrGenerationTimeout)
		assert.Equal(t, []time.Duration{0, 15 * time.Second, 20 * time.Second}, polledAt)
		assert.Equal(t, 20*time.Second, clock.Now().Sub(start))
	})

	t.Run("Error_UpstreamFailed", func(t *testing.T) {
		assets := &mocks.MockAssetGenerator{}
		failed := status(generationDomain.StatusFailed, "")
		failed.Raw = "errored"
		failed.Error = "avatar not found"
		assets.On("Poll", ctx, "job-1").Return(failed, nil)

		useCase := NewGenerationUseCase(Config{}, nil, assets, &mocks.MockProber{}, newFakeClock(), nil)
		_, err := useCase.PollUntilReady(ctx, "job-1", time.Minute, time.Second)

		assert.ErrorIs(t, err, generationDomain.ErrGenerationFailed)
		assert.Contains(t, err.Error(), "avatar not found")
	})

	t.Run("Error_UnreachableAsset", func(t *testing.T) {
		assets := &mocks.MockAssetGenerator{}
		assets.On("Poll", ctx, "job-1").Return(status(generationDomain.StatusReady, "https://cdn.example.com/gone.mp4"), nil)
		prober := &mocks.MockProber{}
		prober.On("Probe", ctx, "https://cdn.example.com/gone.mp4").Return(errors.New("unexpected status 404"))

		useCase := NewGenerationUseCase(Config{}, nil, assets, prober, newFakeClock(), nil)
		_, err := useCase.PollUntilReady(ctx, "job-1", time.Minute, time.Second)

		assert.ErrorIs(t, err, generationDomain.ErrGenerationFailed)
	})

	t.Run("Success_PollErrorsAreTransient", func(t *testing.T) {
		assets := &mocks.MockAssetGenerator{}
		assets.On("Poll", ctx, "job-1").Return(generationDomain.JobStatus{}, errors.New("connection reset")).Once()
		assets.On("Poll", ctx, "job-1").Return(status(generationDomain.StatusReady, "https://cdn.example.com/v.mp4"), nil).Once()
		prober := &mocks.MockProber{}
		prober.On("Probe", ctx, "https://cdn.example.com/v.mp4").Return(nil)

		useCase := NewGenerationUseCase(Config{}, nil, assets, prober, newFakeClock(), nil)
		url, err := useCase.PollUntilReady(ctx, "job-1", time.Minute, time.Second)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/v.mp4", url)
	})

	t.Run("Error_ContextCanceled", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		assets := &mocks.MockAssetGenerator{}
		assets.On("Poll", cancelCtx, "job-1").Return(generationDomain.JobStatus{}, context.Canceled)

		useCase := NewGenerationUseCase(Config{}, nil, assets, &mocks.MockProber{}, newFakeClock(), nil)
		_, err := useCase.PollUntilReady(cancelCtx, "job-1", time.Minute, time.Second)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
