// Package app provides the dependency injection container that assembles the pipeline.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"sync"
	"time"

	auditRepository "github.com/allisson/reelcast/internal/audit/repository"
	auditService "github.com/allisson/reelcast/internal/audit/service"
	auditUseCase "github.com/allisson/reelcast/internal/audit/usecase"
	"github.com/allisson/reelcast/internal/config"
	"github.com/allisson/reelcast/internal/credential"
	"github.com/allisson/reelcast/internal/database"
	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
	distributionService "github.com/allisson/reelcast/internal/distribution/service"
	distributionUseCase "github.com/allisson/reelcast/internal/distribution/usecase"
	generationService "github.com/allisson/reelcast/internal/generation/service"
	generationUseCase "github.com/allisson/reelcast/internal/generation/usecase"
	"github.com/allisson/reelcast/internal/http"
	ledgerRepository "github.com/allisson/reelcast/internal/ledger/repository"
	ledgerUseCase "github.com/allisson/reelcast/internal/ledger/usecase"
	lockRepository "github.com/allisson/reelcast/internal/lock/repository"
	lockUseCase "github.com/allisson/reelcast/internal/lock/usecase"
	"github.com/allisson/reelcast/internal/mapping"
	"github.com/allisson/reelcast/internal/metrics"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	pipelineUseCase "github.com/allisson/reelcast/internal/pipeline/usecase"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
	sourceService "github.com/allisson/reelcast/internal/source/service"
)

// upstreamTimeout bounds a single call to a generation service, platform or writeback endpoint.
const upstreamTimeout = 5 * time.Minute

// lazy holds a component built on first access. Initialization errors are sticky.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = init()
	})
	return l.value, l.err
}

// Container holds all application dependencies. Components are created on first access.
type Container struct {
	config *config.Config

	loggerInit sync.Once
	logger     *slog.Logger

	db        lazy[*sql.DB]
	txManager lazy[database.TxManager]
	resolver  lazy[credential.Resolver]

	lockRepo   lazy[lockUseCase.LockRepository]
	ledgerRepo lazy[ledgerUseCase.LedgerRepository]
	auditRepo  lazy[auditUseCase.AuditRepository]

	lockUseCase   lazy[lockUseCase.LockUseCase]
	ledgerUseCase lazy[ledgerUseCase.LedgerUseCase]
	auditLogger   lazy[auditUseCase.AuditLogger]
	auditUseCase  lazy[auditUseCase.AuditUseCase]

	connector        lazy[*sourceService.Connector]
	writeback        lazy[*sourceService.WritebackSink]
	mapper           lazy[*mapping.Mapper]
	generation       lazy[generationUseCase.GenerationUseCase]
	dryRunGeneration lazy[generationUseCase.GenerationUseCase]
	distribution     lazy[distributionUseCase.DistributionUseCase]

	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]
	statusTracker   lazy[*pipelineUseCase.StatusTracker]
	pipeline        lazy[pipelineUseCase.PipelineUseCase]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	mu     sync.Mutex
	closed bool
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// InMemory reports whether state lives in process instead of a database.
func (c *Container) InMemory() bool {
	return c.config.DBDriver == database.DriverMemory
}

// DB returns the database connection. It is nil for the memory driver.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		if c.InMemory() {
			return database.NewNoOpTxManager(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// CredentialResolver returns the resolver for credential references.
func (c *Container) CredentialResolver() (credential.Resolver, error) {
	return c.resolver.get(func() (credential.Resolver, error) {
		return credential.NewResolver(context.Background(), c.config.CredentialKeeperURI)
	})
}

// LockRepository returns the lock repository for the configured driver.
func (c *Container) LockRepository() (lockUseCase.LockRepository, error) {
	return c.lockRepo.get(func() (lockUseCase.LockRepository, error) {
		if c.InMemory() {
			return lockRepository.NewMemoryLockRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for lock repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			return lockRepository.NewPostgreSQLLockRepository(db), nil
		case database.DriverMySQL:
			return lockRepository.NewMySQLLockRepository(db), nil
		default:
			return lockRepository.NewSQLiteLockRepository(db), nil
		}
	})
}

// LedgerRepository returns the ledger repository for the configured driver.
func (c *Container) LedgerRepository() (ledgerUseCase.LedgerRepository, error) {
	return c.ledgerRepo.get(func() (ledgerUseCase.LedgerRepository, error) {
		if c.InMemory() {
			return ledgerRepository.NewMemoryLedgerRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for ledger repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			return ledgerRepository.NewPostgreSQLLedgerRepository(db), nil
		case database.DriverMySQL:
			return ledgerRepository.NewMySQLLedgerRepository(db), nil
		default:
			return ledgerRepository.NewSQLiteLedgerRepository(db), nil
		}
	})
}

// AuditRepository returns the audit event repository for the configured driver.
func (c *Container) AuditRepository() (auditUseCase.AuditRepository, error) {
	return c.auditRepo.get(func() (auditUseCase.AuditRepository, error) {
		if c.InMemory() {
			return auditRepository.NewMemoryAuditRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			return auditRepository.NewPostgreSQLAuditRepository(db), nil
		case database.DriverMySQL:
			return auditRepository.NewMySQLAuditRepository(db), nil
		default:
			return auditRepository.NewSQLiteAuditRepository(db), nil
		}
	})
}

// LockUseCase returns the lock manager, holding locks as INSTANCE_ID.
func (c *Container) LockUseCase() (lockUseCase.LockUseCase, error) {
	return c.lockUseCase.get(func() (lockUseCase.LockUseCase, error) {
		repo, err := c.LockRepository()
		if err != nil {
			return nil, err
		}
		return lockUseCase.NewLockUseCase(repo, c.config.InstanceID, c.Logger()), nil
	})
}

// LedgerUseCase returns the idempotency ledger.
func (c *Container) LedgerUseCase() (ledgerUseCase.LedgerUseCase, error) {
	return c.ledgerUseCase.get(func() (ledgerUseCase.LedgerUseCase, error) {
		repo, err := c.LedgerRepository()
		if err != nil {
			return nil, err
		}
		return ledgerUseCase.NewLedgerUseCase(repo, c.config.InstanceID, c.Logger()), nil
	})
}

// AuditLogger returns the in-memory per-cycle audit buffer.
func (c *Container) AuditLogger() auditUseCase.AuditLogger {
	logger, _ := c.auditLogger.get(func() (auditUseCase.AuditLogger, error) {
		return auditUseCase.NewAuditLogger(c.Logger(), time.Now), nil
	})
	return logger
}

// AuditUseCase returns the durable audit trail. Events are signed when AUDIT_SIGNING_KEY is set.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	return c.auditUseCase.get(func() (auditUseCase.AuditUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		repo, err := c.AuditRepository()
		if err != nil {
			return nil, err
		}

		var signer auditService.EventSigner
		if c.config.AuditSigningKey != "" {
			signer, err = auditService.NewEventSigner([]byte(c.config.AuditSigningKey))
			if err != nil {
				return nil, fmt.Errorf("failed to create audit signer: %w", err)
			}
		}
		return auditUseCase.NewAuditUseCase(txManager, repo, signer, c.Logger()), nil
	})
}

// Connector returns the source connector.
func (c *Container) Connector() *sourceService.Connector {
	connector, _ := c.connector.get(func() (*sourceService.Connector, error) {
		client := &nethttp.Client{Timeout: c.config.SourceTimeout}
		aliases := sourceDomain.FieldAliases{
			ID:          c.config.SourceIDAliases,
			Title:       c.config.SourceTitleAliases,
			Description: c.config.SourceDescriptionAliases,
			Ready:       c.config.SourceReadyAliases,
			Posted:      c.config.SourcePostedAliases,
		}
		return sourceService.NewConnector(client, aliases, c.Logger()), nil
	})
	return connector
}

// WritebackSink returns the source writeback sink.
func (c *Container) WritebackSink() (*sourceService.WritebackSink, error) {
	return c.writeback.get(func() (*sourceService.WritebackSink, error) {
		resolver, err := c.CredentialResolver()
		if err != nil {
			return nil, err
		}
		return sourceService.NewWritebackSink(
			upstreamClient(),
			sourceService.WritebackConfig{
				Endpoint: c.config.WritebackURL,
				TokenRef: c.config.WritebackToken,
				Columns:  sourceService.DefaultWritebackColumns(),
			},
			resolver,
			c.Logger(),
		), nil
	})
}

// Mapper returns the category mapper loaded from MAPPING_FILE, or the built-in rules.
func (c *Container) Mapper() (*mapping.Mapper, error) {
	return c.mapper.get(func() (*mapping.Mapper, error) {
		mapper, builtin, err := mapping.Load(c.config.MappingFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping rules: %w", err)
		}
		if builtin {
			c.Logger().Info("mapping file not found, using built-in rules",
				slog.String("path", c.config.MappingFile))
		}
		return mapper, nil
	})
}

// GenerationUseCase returns the generation orchestrator backed by the configured services.
func (c *Container) GenerationUseCase() (generationUseCase.GenerationUseCase, error) {
	return c.generation.get(func() (generationUseCase.GenerationUseCase, error) {
		resolver, err := c.CredentialResolver()
		if err != nil {
			return nil, err
		}
		client := upstreamClient()
		script := generationService.NewScriptService(client, generationService.ScriptConfig{
			Endpoint:  c.config.ScriptAPIURL,
			APIKeyRef: c.config.ScriptAPIKey,
			Model:     c.config.ScriptModel,
		}, resolver)
		assets := generationService.NewAssetService(client, generationService.AssetConfig{
			BaseURL:   c.config.AssetAPIURL,
			APIKeyRef: c.config.AssetAPIKey,
		}, resolver)

		return generationUseCase.NewGenerationUseCase(
			c.pollConfig(),
			script,
			assets,
			generationService.NewHTTPProber(client),
			nil,
			c.Logger(),
		), nil
	})
}

// DryRunGenerationUseCase returns a generation orchestrator that never touches the network.
func (c *Container) DryRunGenerationUseCase() generationUseCase.GenerationUseCase {
	useCase, _ := c.dryRunGeneration.get(func() (generationUseCase.GenerationUseCase, error) {
		return generationUseCase.NewGenerationUseCase(
			c.pollConfig(),
			generationService.SyntheticScript{},
			generationService.SyntheticAssets{},
			generationService.SyntheticProber{},
			nil,
			c.Logger(),
		), nil
	})
	return useCase
}

// DistributionUseCase returns the distribution coordinator for the platforms in PLATFORMS_FILE.
func (c *Container) DistributionUseCase() (distributionUseCase.DistributionUseCase, error) {
	return c.distribution.get(c.initDistributionUseCase)
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(
			c.config.MetricsNamespace,
			metrics.WithRuntimeCollectors(),
			metrics.WithProcessCollector(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// StatusTracker returns the shared pipeline status tracker.
func (c *Container) StatusTracker() *pipelineUseCase.StatusTracker {
	tracker, _ := c.statusTracker.get(func() (*pipelineUseCase.StatusTracker, error) {
		return pipelineUseCase.NewStatusTracker(), nil
	})
	return tracker
}

// PipelineUseCase returns the cycle orchestrator with all collaborators wired.
func (c *Container) PipelineUseCase() (pipelineUseCase.PipelineUseCase, error) {
	return c.pipeline.get(c.initPipelineUseCase)
}

// HTTPServer returns the status server with its routes configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every initialized resource. Calls after the first are no-ops.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var shutdownErrors []error

	if c.httpServer.value != nil {
		if err := c.httpServer.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer.value != nil {
		if err := c.metricsServer.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if c.metricsProvider.value != nil {
		if err := c.metricsProvider.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if c.resolver.value != nil {
		if err := c.resolver.value.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("credential resolver close: %w", err))
		}
	}
	if c.db.value != nil {
		if err := c.db.value.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates a JSON logger at the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	if c.InMemory() {
		return nil, nil
	}
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) pollConfig() generationUseCase.Config {
	return generationUseCase.Config{
		PollInterval: c.config.AssetPollInterval,
		PollTimeout:  c.config.AssetPollTimeout,
	}
}

func (c *Container) initDistributionUseCase() (distributionUseCase.DistributionUseCase, error) {
	policy, err := distributionDomain.ParsePolicy(c.config.DistributionPolicy)
	if err != nil {
		return nil, err
	}
	platforms, err := distributionService.Load(c.config.PlatformsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load platforms: %w", err)
	}
	resolver, err := c.CredentialResolver()
	if err != nil {
		return nil, err
	}

	client := upstreamClient()
	targets := make([]distributionUseCase.Target, 0, len(platforms))
	for _, platform := range platforms {
		adapter, err := distributionService.New(platform, client)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", platform.Name, err)
		}
		targets = append(targets, distributionUseCase.Target{Adapter: adapter, Config: platform})
	}

	useCase := distributionUseCase.NewDistributionUseCase(targets, policy, resolver, c.Logger())

	m, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}
	return distributionUseCase.NewDistributionUseCaseWithMetrics(useCase, m), nil
}

func (c *Container) initPipelineUseCase() (pipelineUseCase.PipelineUseCase, error) {
	locks, err := c.LockUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get lock use case for pipeline: %w", err)
	}
	ledger, err := c.LedgerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger use case for pipeline: %w", err)
	}
	mapper, err := c.Mapper()
	if err != nil {
		return nil, err
	}
	generation, err := c.GenerationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get generation use case for pipeline: %w", err)
	}
	distribution, err := c.DistributionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution use case for pipeline: %w", err)
	}
	writeback, err := c.WritebackSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get writeback sink for pipeline: %w", err)
	}

	deps := pipelineUseCase.Dependencies{
		Source:           c.Connector(),
		Locks:            locks,
		Ledger:           ledger,
		Mapper:           mapper,
		Generation:       generation,
		DryRunGeneration: c.DryRunGenerationUseCase(),
		Distribution:     distribution,
		Writeback:        writeback,
		Audit:            c.AuditLogger(),
		Status:           c.StatusTracker(),
	}
	if c.config.AuditPersist {
		store, err := c.AuditUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get audit use case for pipeline: %w", err)
		}
		deps.AuditStore = store
	}

	useCase := pipelineUseCase.NewPipelineUseCase(pipelineUseCase.Config{
		SourceURL:     c.config.SourceURL,
		LockTTL:       c.config.LockTTL,
		AcceptPartial: c.config.AcceptPartial,
		DryRun:        c.config.DryRun,
		Force:         c.config.ForceReprocess,
		CycleBudget:   c.config.CycleBudget,
		PersistAudit:  c.config.AuditPersist,
	}, deps, c.Logger())

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return useCase, nil
	}

	if err := metrics.RegisterCycleGauges(
		provider.MeterProvider(),
		c.config.MetricsNamespace,
		c.cycleSnapshot,
	); err != nil {
		return nil, err
	}
	m, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}
	return pipelineUseCase.NewPipelineUseCaseWithMetrics(useCase, m, c.Logger()), nil
}

func (c *Container) cycleSnapshot() metrics.CycleSnapshot {
	status := c.StatusTracker().Snapshot()
	snapshot := metrics.CycleSnapshot{
		Running:         status.Running,
		CyclesCompleted: status.CyclesCompleted,
		CyclesFailed:    status.CyclesFailed,
	}
	if last := status.LastCycle; last != nil {
		snapshot.LastCycle = map[string]int{
			string(pipelineDomain.OutcomeDistributed): last.Distributed,
			string(pipelineDomain.OutcomePartial):     last.Partial,
			string(pipelineDomain.OutcomeFailed):      last.Failed,
			string(pipelineDomain.OutcomeSkipped):     last.Skipped,
		}
	}
	return snapshot
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	ledger, err := c.LedgerUseCase()
	if err != nil {
		return nil, err
	}
	locks, err := c.LockUseCase()
	if err != nil {
		return nil, err
	}
	store, err := c.AuditUseCase()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	var opts []http.ServerOption
	if c.InMemory() {
		opts = append(opts, http.WithInMemoryStore())
	}
	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger(), opts...)

	handler := http.NewStatusHandler(c.StatusTracker(), c.AuditLogger(), store, ledger, locks, c.Logger())
	server.SetupRouter(c.config, handler, provider, c.config.MetricsNamespace)
	return server, nil
}

func upstreamClient() *nethttp.Client {
	return &nethttp.Client{Timeout: upstreamTimeout}
}
