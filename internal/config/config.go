// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the status server will bind to.
	ServerHost string
	// ServerPort is the port number the status server will listen on.
	ServerPort int

	// DBDriver is the database driver to use ("postgres", "mysql", "sqlite3" or "memory").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
	// InstanceID identifies this process as lock holder and ledger writer.
	InstanceID string

	// CORSEnabled indicates whether CORS is enabled on the status server.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// RateLimitEnabled enables per-client-IP rate limiting on the status server.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the sustained request rate allowed per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size allowed per client IP.
	RateLimitBurst int

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// SourceURL references the tabular source (CSV URL, Google Sheets URL or local path).
	SourceURL string
	// SourceTimeout bounds a single source fetch.
	SourceTimeout time.Duration
	// SourceIDAliases lists candidate column names for the stable record identifier.
	SourceIDAliases []string
	// SourceTitleAliases lists candidate column names for the record title.
	SourceTitleAliases []string
	// SourceDescriptionAliases lists candidate column names for the record description.
	SourceDescriptionAliases []string
	// SourceReadyAliases lists candidate column names for the readiness flag.
	SourceReadyAliases []string
	// SourcePostedAliases lists candidate column names for the already-distributed flag.
	SourcePostedAliases []string

	// WritebackURL is the endpoint accepting cell updates for the source; empty disables writeback.
	WritebackURL string
	// WritebackToken is a credential reference for the writeback endpoint.
	WritebackToken string

	// ScriptAPIURL is the script-generation endpoint; empty enables the degraded fallback.
	ScriptAPIURL string
	// ScriptAPIKey is a credential reference for the script-generation service.
	ScriptAPIKey string
	// ScriptModel is the model name sent to the script-generation service.
	ScriptModel string

	// AssetAPIURL is the base URL of the asset-generation service.
	AssetAPIURL string
	// AssetAPIKey is a credential reference for the asset-generation service.
	AssetAPIKey string
	// AssetPollInterval is the fixed delay between job status polls.
	AssetPollInterval time.Duration
	// AssetPollTimeout bounds the total time spent waiting for one job.
	AssetPollTimeout time.Duration

	// LockTTL must exceed the worst-case per-record pipeline duration.
	LockTTL time.Duration
	// CycleInterval is the delay between cycles in continuous mode.
	CycleInterval time.Duration
	// CycleBudget stops starting new records once a cycle has run this long (0 disables).
	CycleBudget time.Duration
	// DistributionPolicy is "any" or "all".
	DistributionPolicy string
	// AcceptPartial commits partially distributed records to the ledger.
	AcceptPartial bool
	// DryRun replaces all external calls with synthetic successes.
	DryRun bool
	// ForceReprocess ignores the already-posted flag and the ledger short-circuit.
	ForceReprocess bool

	// MappingFile is the YAML file holding category rules; missing file uses built-in rules.
	MappingFile string
	// PlatformsFile is the YAML file holding distribution platform definitions.
	PlatformsFile string

	// CredentialKeeperURI opens a gocloud.dev secrets keeper for "enc:" credential references.
	CredentialKeeperURI string

	// AuditPersist enables appending audit events to the database at cycle end.
	AuditPersist bool
	// AuditSigningKey is the input keying material for audit event signatures.
	AuditSigningKey string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "sqlite3"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "file:reelcast.db?_busy_timeout=5000"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 10),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel:   env.GetString("LOG_LEVEL", "info"),
		InstanceID: env.GetString("INSTANCE_ID", defaultInstanceID()),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Rate limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "reelcast"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Source
		SourceURL:     env.GetString("SOURCE_URL", ""),
		SourceTimeout: env.GetDuration("SOURCE_TIMEOUT_SECONDS", 30, time.Second),
		SourceIDAliases: splitList(
			env.GetString("SOURCE_ID_ALIASES", "id,product id,product_id,sku,handle,asin"),
		),
		SourceTitleAliases: splitList(
			env.GetString("SOURCE_TITLE_ALIASES", "title,product title,product_title,name,product name"),
		),
		SourceDescriptionAliases: splitList(
			env.GetString("SOURCE_DESCRIPTION_ALIASES", "description,body,body (html),product description,long description"),
		),
		SourceReadyAliases: splitList(
			env.GetString("SOURCE_READY_ALIASES", "ready,ready to post,approved,status ready"),
		),
		SourcePostedAliases: splitList(
			env.GetString("SOURCE_POSTED_ALIASES", "posted,already posted,video posted,distributed"),
		),

		// Writeback
		WritebackURL:   env.GetString("WRITEBACK_URL", ""),
		WritebackToken: env.GetString("WRITEBACK_TOKEN", ""),

		// Script generation
		ScriptAPIURL: env.GetString("SCRIPT_API_URL", ""),
		ScriptAPIKey: env.GetString("SCRIPT_API_KEY", ""),
		ScriptModel:  env.GetString("SCRIPT_MODEL", "gpt-4o-mini"),

		// Asset generation
		AssetAPIURL:       env.GetString("ASSET_API_URL", ""),
		AssetAPIKey:       env.GetString("ASSET_API_KEY", ""),
		AssetPollInterval: env.GetDuration("ASSET_POLL_INTERVAL_SECONDS", 15, time.Second),
		AssetPollTimeout:  env.GetDuration("ASSET_POLL_TIMEOUT_MINUTES", 20, time.Minute),

		// Pipeline
		LockTTL:            env.GetDuration("LOCK_TTL_MINUTES", 45, time.Minute),
		CycleInterval:      env.GetDuration("CYCLE_INTERVAL_MINUTES", 360, time.Minute),
		CycleBudget:        env.GetDuration("CYCLE_BUDGET_MINUTES", 50, time.Minute),
		DistributionPolicy: env.GetString("DISTRIBUTION_POLICY", "any"),
		AcceptPartial:      env.GetBool("ACCEPT_PARTIAL", false),
		DryRun:             env.GetBool("DRY_RUN", false),
		ForceReprocess:     env.GetBool("FORCE_REPROCESS", false),

		// Rule files
		MappingFile:   env.GetString("MAPPING_FILE", "mapping.yaml"),
		PlatformsFile: env.GetString("PLATFORMS_FILE", "platforms.yaml"),

		// Credentials
		CredentialKeeperURI: env.GetString("CREDENTIAL_KEEPER_URI", ""),

		// Audit
		AuditPersist:    env.GetBool("AUDIT_PERSIST", true),
		AuditSigningKey: env.GetString("AUDIT_SIGNING_KEY", ""),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// splitList parses a comma-separated list, trimming and lowercasing entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "reelcast"
	}
	return host
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
