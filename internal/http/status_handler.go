package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	"github.com/allisson/reelcast/internal/http/dto"
	"github.com/allisson/reelcast/internal/httputil"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
)

// StatusSource returns the pipeline status snapshot.
type StatusSource interface {
	Snapshot() pipelineDomain.Status
}

// AuditBuffer returns the summary of the in-memory audit buffer.
type AuditBuffer interface {
	Summary() *auditDomain.Summary
}

// AuditStore lists persisted audit events.
type AuditStore interface {
	List(ctx context.Context, offset, limit int, from, to *time.Time) ([]*auditDomain.Event, error)
}

// LedgerReader reads idempotency ledger entries.
type LedgerReader interface {
	Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error)
	List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error)
}

// LockLister lists processing locks.
type LockLister interface {
	List(ctx context.Context) ([]*lockDomain.ProcessingLock, error)
}

// StatusHandler serves the read-only observability routes. Nil sources answer 404.
type StatusHandler struct {
	status StatusSource
	audit  AuditBuffer
	store  AuditStore
	ledger LedgerReader
	locks  LockLister
	now    func() time.Time
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(
	status StatusSource,
	audit AuditBuffer,
	store AuditStore,
	ledger LedgerReader,
	locks LockLister,
	logger *slog.Logger,
) *StatusHandler {
	return &StatusHandler{
		status: status,
		audit:  audit,
		store:  store,
		ledger: ledger,
		locks:  locks,
		now:    time.Now,
		logger: logger,
	}
}

// StatusHandler returns last-cycle counters and recent errors.
// GET /status
func (h *StatusHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Snapshot())
}

// AuditSummaryHandler returns the summary of the most recent cycle's events.
// GET /status/audit
func (h *StatusHandler) AuditSummaryHandler(c *gin.Context) {
	if h.audit == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, h.audit.Summary())
}

// ListAuditEventsHandler pages through persisted audit events.
// GET /audit/events?offset=0&limit=50&from=RFC3339&to=RFC3339
func (h *StatusHandler) ListAuditEventsHandler(c *gin.Context) {
	if h.store == nil {
		c.Status(http.StatusNotFound)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	from, to, err := httputil.ParseTimeRange(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	events, err := h.store.List(c.Request.Context(), offset, limit, from, to)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapList(events, dto.MapAuditEventToResponse))
}

// ListLedgerHandler pages through ledger entries, newest first.
// GET /ledger?offset=0&limit=50
func (h *StatusHandler) ListLedgerHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	entries, err := h.ledger.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapList(entries, dto.MapLedgerEntryToResponse))
}

// GetLedgerHandler returns one ledger entry.
// GET /ledger/:id
func (h *StatusHandler) GetLedgerHandler(c *gin.Context) {
	entry, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapLedgerEntryToResponse(entry))
}

// ListLocksHandler lists processing locks, flagging expired ones.
// GET /locks
func (h *StatusHandler) ListLocksHandler(c *gin.Context) {
	locks, err := h.locks.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	now := h.now()
	c.JSON(http.StatusOK, dto.MapList(locks, func(lock *lockDomain.ProcessingLock) dto.LockResponse {
		return dto.MapLockToResponse(lock, now)
	}))
}
