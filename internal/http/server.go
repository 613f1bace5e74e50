// Package http provides the read-only status server and the Prometheus metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/reelcast/internal/config"
	"github.com/allisson/reelcast/internal/metrics"
)

// Server is the status HTTP server.
type Server struct {
	db       *sql.DB
	inMemory bool
	router   *gin.Engine
	server   *http.Server
	logger   *slog.Logger
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithInMemoryStore reports the database as ready without a connection, for the memory driver.
func WithInMemoryStore() ServerOption {
	return func(s *Server) {
		s.inMemory = true
	}
}

// NewServer creates the status server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRouter registers middleware and the read-only routes. A nil metricsProvider
// disables the HTTP metrics middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers *StatusHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	if cors := newCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); cors != nil {
		router.Use(cors)
	}
	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if handlers != nil {
		router.GET("/status", handlers.StatusHandler)
		router.GET("/status/audit", handlers.AuditSummaryHandler)
		router.GET("/audit/events", handlers.ListAuditEventsHandler)
		router.GET("/ledger", handlers.ListLedgerHandler)
		router.GET("/ledger/:id", handlers.GetLedgerHandler)
		router.GET("/locks", handlers.ListLocksHandler)
	}

	s.router = router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	s.logger.Info("starting status server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready when the database answers a ping within two seconds.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	switch {
	case s.inMemory:
		database = "memory"
	case s.db == nil:
		database = "error"
	default:
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if database == "error" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": database},
	})
}
