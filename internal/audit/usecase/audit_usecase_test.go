package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	auditRepository "github.com/allisson/reelcast/internal/audit/repository"
	auditService "github.com/allisson/reelcast/internal/audit/service"
	auditMocks "github.com/allisson/reelcast/internal/audit/usecase/mocks"
	"github.com/allisson/reelcast/internal/database"
	"github.com/allisson/reelcast/internal/testutil"
)

func bufferedEvents(t *testing.T, start time.Time) []auditDomain.Event {
	t.Helper()
	clock := start
	logger := NewAuditLogger(slog.New(slog.DiscardHandler), func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	logger.StartRun(uuid.Must(uuid.NewV7()))

	ctx := context.Background()
	logger.Info(ctx, auditDomain.CategoryCycle, "", "cycle started", map[string]any{"candidates": 2})
	logger.Success(ctx, auditDomain.CategoryDistribution, "SKU-1", "record distributed", map[string]any{"tiktok": "tt-1"})
	logger.Error(ctx, auditDomain.CategoryGeneration, "SKU-2", "asset generation failed", nil)
	return logger.Events()
}

func TestAuditUseCase_PersistAndVerify_SQLite(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupSQLiteDB(t)
	repo := auditRepository.NewSQLiteAuditRepository(db)
	signer, err := auditService.NewEventSigner([]byte("audit-secret"))
	require.NoError(t, err)

	useCase := NewAuditUseCase(database.NewTxManager(db), repo, signer, slog.New(slog.DiscardHandler))

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	count, err := useCase.Persist(ctx, bufferedEvents(t, start))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stored, err := useCase.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "cycle started", stored[0].Message)
	assert.InDelta(t, 2, stored[0].Details["candidates"], 0)
	assert.Nil(t, stored[2].Details)

	end := start.Add(time.Hour)
	report, err := useCase.VerifyBatch(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TotalChecked)
	assert.Equal(t, int64(3), report.ValidCount)
	assert.Zero(t, report.InvalidCount)

	t.Run("tampering is detected", func(t *testing.T) {
		_, err := db.Exec(`UPDATE audit_events SET message = 'record skipped' WHERE record_id = 'SKU-1'`)
		require.NoError(t, err)

		report, err := useCase.VerifyBatch(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, int64(2), report.ValidCount)
		require.Len(t, report.InvalidEvents, 1)
		assert.Equal(t, stored[1].ID, report.InvalidEvents[0])
	})

	t.Run("time range filters", func(t *testing.T) {
		from := start.Add(4 * time.Second)
		events, err := useCase.List(ctx, 0, 10, &from, nil)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("delete older than", func(t *testing.T) {
		sqliteUseCase := useCase.(*auditUseCase)
		sqliteUseCase.now = func() time.Time { return start.AddDate(0, 0, 30).Add(3500 * time.Millisecond) }

		count, err := useCase.DeleteOlderThan(ctx, 30, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = useCase.DeleteOlderThan(ctx, 30, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		remaining, err := useCase.List(ctx, 0, 10, nil, nil)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})
}

func TestAuditUseCase_UnsignedEvents(t *testing.T) {
	ctx := context.Background()
	repo := auditRepository.NewMemoryAuditRepository()
	unsigned := NewAuditUseCase(noTx{}, repo, nil, slog.New(slog.DiscardHandler))

	_, err := unsigned.Persist(ctx, bufferedEvents(t, time.Now()))
	require.NoError(t, err)

	_, err = unsigned.VerifyBatch(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, auditDomain.ErrSigningKeyMissing)

	signer, err := auditService.NewEventSigner([]byte("audit-secret"))
	require.NoError(t, err)
	verifier := NewAuditUseCase(noTx{}, repo, signer, slog.New(slog.DiscardHandler))

	report, err := verifier.VerifyBatch(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.UnsignedCount)
	assert.Zero(t, report.InvalidCount)
}

func TestAuditUseCase_PersistFailure(t *testing.T) {
	ctx := context.Background()
	repo := &auditMocks.MockAuditRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	useCase := NewAuditUseCase(noTx{}, repo, nil, slog.New(slog.DiscardHandler))
	count, err := useCase.Persist(ctx, bufferedEvents(t, time.Now()))

	assert.Zero(t, count)
	assert.ErrorContains(t, err, "disk full")
	repo.AssertExpectations(t)
}

func TestAuditUseCase_PersistEmpty(t *testing.T) {
	repo := &auditMocks.MockAuditRepository{}
	useCase := NewAuditUseCase(noTx{}, repo, nil, slog.New(slog.DiscardHandler))

	count, err := useCase.Persist(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, count)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditUseCase_DeleteOlderThanNegativeDays(t *testing.T) {
	useCase := NewAuditUseCase(noTx{}, &auditMocks.MockAuditRepository{}, nil, slog.New(slog.DiscardHandler))

	_, err := useCase.DeleteOlderThan(context.Background(), -1, false)
	assert.Error(t, err)
}

// noTx runs fn without a transaction, for repositories that have none.
type noTx struct{}

func (noTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
