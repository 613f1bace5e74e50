package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/reelcast/internal/database"
)

// RunMigrations applies all pending migrations for driver. The memory driver has no schema
// and is a no-op.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver == database.DriverMemory {
		logger.Info("memory driver selected, nothing to migrate")
		return nil
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	migrationsPath, databaseURL := migrationTarget(driver, connectionString)

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationTarget maps a database/sql driver and DSN to the migration source and the
// URL form golang-migrate expects.
func migrationTarget(driver, connectionString string) (migrationsPath, databaseURL string) {
	switch driver {
	case database.DriverMySQL:
		return "file://migrations/mysql", "mysql://" + connectionString
	case database.DriverSQLite:
		return "file://migrations/sqlite", "sqlite3://" + strings.TrimPrefix(connectionString, "file:")
	default:
		return "file://migrations/postgresql", connectionString
	}
}
