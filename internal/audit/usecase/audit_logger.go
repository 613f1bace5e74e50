package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

type auditLogger struct {
	mu        sync.Mutex
	events    []auditDomain.Event
	runID     uuid.UUID
	startedAt time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// NewAuditLogger creates an empty buffer that mirrors every event to logger.
func NewAuditLogger(logger *slog.Logger, now func() time.Time) AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &auditLogger{now: now, logger: logger, startedAt: now().UTC()}
}

func (a *auditLogger) StartRun(runID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runID = runID
	a.startedAt = a.now().UTC()
}

func (a *auditLogger) RunID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runID
}

// Log stamps event with an id, the current run and a millisecond timestamp when unset,
// appends it and mirrors it to the structured logger.
func (a *auditLogger) Log(ctx context.Context, event auditDomain.Event) auditDomain.Event {
	a.mu.Lock()
	if event.ID == uuid.Nil {
		event.ID = uuid.Must(uuid.NewV7())
	}
	if event.RunID == uuid.Nil {
		event.RunID = a.runID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = a.now().UTC().Truncate(time.Millisecond)
	}
	a.events = append(a.events, event)
	a.mu.Unlock()

	a.mirror(ctx, event)
	return event
}

func (a *auditLogger) mirror(ctx context.Context, event auditDomain.Event) {
	attrs := []slog.Attr{
		slog.String("audit_level", string(event.Level)),
		slog.String("category", event.Category),
		slog.String("run_id", event.RunID.String()),
	}
	if event.RecordID != "" {
		attrs = append(attrs, slog.String("record_id", event.RecordID))
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, slog.Any("details", event.Details))
	}
	a.logger.LogAttrs(ctx, slogLevel(event.Level), event.Message, attrs...)
}

func slogLevel(level auditDomain.Level) slog.Level {
	switch level {
	case auditDomain.LevelWarn:
		return slog.LevelWarn
	case auditDomain.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (a *auditLogger) record(
	ctx context.Context,
	level auditDomain.Level,
	category, recordID, message string,
	details map[string]any,
) {
	a.Log(ctx, auditDomain.Event{
		Level:    level,
		Category: category,
		RecordID: recordID,
		Message:  message,
		Details:  details,
	})
}

func (a *auditLogger) Info(ctx context.Context, category, recordID, message string, details map[string]any) {
	a.record(ctx, auditDomain.LevelInfo, category, recordID, message, details)
}

func (a *auditLogger) Success(ctx context.Context, category, recordID, message string, details map[string]any) {
	a.record(ctx, auditDomain.LevelSuccess, category, recordID, message, details)
}

func (a *auditLogger) Warn(ctx context.Context, category, recordID, message string, details map[string]any) {
	a.record(ctx, auditDomain.LevelWarn, category, recordID, message, details)
}

func (a *auditLogger) Error(ctx context.Context, category, recordID, message string, details map[string]any) {
	a.record(ctx, auditDomain.LevelError, category, recordID, message, details)
}

func (a *auditLogger) Skip(ctx context.Context, category, recordID, message string, details map[string]any) {
	a.record(ctx, auditDomain.LevelSkip, category, recordID, message, details)
}

// Events returns a copy of the buffer in recorded order.
func (a *auditLogger) Events() []auditDomain.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditDomain.Event(nil), a.events...)
}

func (a *auditLogger) Summary() *auditDomain.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return auditDomain.Summarize(a.runID, a.startedAt, a.events)
}

func (a *auditLogger) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = nil
}
