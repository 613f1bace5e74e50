package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/reelcast/internal/app"
	"github.com/allisson/reelcast/internal/config"
)

// RunDaemon runs cycles every CYCLE_INTERVAL_MINUTES while serving the status and metrics
// endpoints. Blocks until SIGINT/SIGTERM or a server failure. An in-flight cycle finishes
// its current record before the loop observes cancellation.
func RunDaemon(ctx context.Context, version string, dryRun, force bool) error {
	cfg := config.Load()
	cfg.DryRun = cfg.DryRun || dryRun
	cfg.ForceReprocess = cfg.ForceReprocess || force

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting daemon",
		slog.String("version", version),
		slog.Duration("interval", cfg.CycleInterval),
		slog.Bool("dry_run", cfg.DryRun),
	)
	defer closeContainer(container, logger)

	pipeline, err := container.PipelineUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize status server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errs := make(chan error, 3)
	go func() {
		if err := server.Start(ctx); err != nil {
			errs <- fmt.Errorf("status server error: %w", err)
		}
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				errs <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := pipeline.Start(ctx, cfg.CycleInterval, pipeline.DefaultOptions()); err != nil {
			errs <- fmt.Errorf("pipeline error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errs:
		logger.Error("daemon error, initiating shutdown", slog.Any("error", runErr))
		cancel()
	}

	<-loopDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()
	if err := container.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}
