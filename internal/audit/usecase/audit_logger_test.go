package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 10, 0, 0, 987654321, time.UTC)
}

func TestAuditLogger_LogAndSummary(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	logger := NewAuditLogger(slog.New(slog.NewJSONHandler(&out, nil)), fixedNow)

	runID := uuid.Must(uuid.NewV7())
	logger.StartRun(runID)

	logger.Info(ctx, auditDomain.CategoryCycle, "", "cycle started", nil)
	logger.Skip(ctx, auditDomain.CategoryLock, "SKU-1", "record locked by another execution", map[string]any{"holder": "cron"})
	logger.Error(ctx, auditDomain.CategoryGeneration, "SKU-2", "asset generation timed out", nil)
	logger.Success(ctx, auditDomain.CategoryDistribution, "SKU-3", "record distributed", nil)
	logger.Warn(ctx, auditDomain.CategoryWriteback, "SKU-3", "writeback failed", nil)

	events := logger.Events()
	require.Len(t, events, 5)
	for _, event := range events {
		assert.Equal(t, runID, event.RunID)
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, fixedNow().Truncate(time.Millisecond), event.Timestamp)
	}
	assert.Equal(t, auditDomain.LevelSkip, events[1].Level)
	assert.Equal(t, "cron", events[1].Details["holder"])

	summary := logger.Summary()
	assert.Equal(t, runID, summary.RunID)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 1, summary.Count(auditDomain.LevelError))
	assert.Equal(t, 1, summary.Count(auditDomain.LevelSkip))
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "SKU-2", summary.Errors[0].RecordID)
	require.Len(t, summary.Successes, 1)
	assert.Equal(t, "SKU-3", summary.Successes[0].RecordID)

	t.Run("events are mirrored to the structured logger", func(t *testing.T) {
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)

		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[2]), &record))
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "asset generation timed out", record["msg"])
		assert.Equal(t, "SKU-2", record["record_id"])
		assert.Equal(t, "generation", record["category"])

		require.NoError(t, json.Unmarshal([]byte(lines[1]), &record))
		assert.Equal(t, "INFO", record["level"])
		assert.Equal(t, "SKIP", record["audit_level"])
	})

	t.Run("clear empties the buffer", func(t *testing.T) {
		logger.Clear()
		assert.Empty(t, logger.Events())
		assert.Zero(t, logger.Summary().Total)
	})
}

func TestAuditLogger_NilLoggerUsesDefault(t *testing.T) {
	logger := NewAuditLogger(nil, fixedNow)

	require.NotPanics(t, func() {
		logger.Error(context.Background(), auditDomain.CategoryCycle, "", "source fetch failed", nil)
	})
	assert.Len(t, logger.Events(), 1)
}

func TestAuditLogger_EventsReturnsCopy(t *testing.T) {
	logger := NewAuditLogger(slog.New(slog.DiscardHandler), nil)
	logger.Info(context.Background(), auditDomain.CategoryCycle, "", "one", nil)

	events := logger.Events()
	events[0].Message = "changed"

	assert.Equal(t, "one", logger.Events()[0].Message)
}

func TestAuditLogger_ConcurrentLog(t *testing.T) {
	logger := NewAuditLogger(slog.New(slog.DiscardHandler), nil)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Success(context.Background(), auditDomain.CategoryDistribution, "SKU", "ok", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, logger.Summary().Count(auditDomain.LevelSuccess))
}
