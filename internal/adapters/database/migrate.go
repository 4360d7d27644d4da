package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations executes all pending migrations for the connection's driver
func RunMigrations(db *DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		logger.Warn("database is in dirty state, attempting to force version",
			zap.Uint("version", currentVersion),
		)
		if err := m.Force(int(currentVersion)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no new migrations to apply", zap.String("driver", db.Driver()))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	logger.Info("migrations completed successfully",
		zap.String("driver", db.Driver()),
		zap.Uint("old_version", currentVersion),
		zap.Uint("new_version", newVersion),
	)

	return nil
}

// GetMigrationVersion returns current migration version
func GetMigrationVersion(db *DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}

	return version, dirty, nil
}

// newMigrate builds a migrator over the embedded scripts.
// The returned instance is never closed: closing it would close the shared *sql.DB.
func newMigrate(db *DB) (*migrate.Migrate, error) {
	var (
		driver migratedb.Driver
		err    error
	)

	switch db.Driver() {
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(db.Conn(), &postgres.Config{})
	case config.DriverSQLite:
		driver, err = sqlite3.WithInstance(db.Conn(), &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", db.Driver())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", db.Driver(), err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+db.Driver())
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Driver(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
