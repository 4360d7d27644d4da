package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

// DriverClickHouse is the database/sql driver name registered by clickhouse-go
const DriverClickHouse = "clickhouse"

// DB wraps database connection
type DB struct {
	conn   *sqlx.DB
	driver string
}

// New opens the store selected by configuration
func New(cfg *config.Config) (*DB, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return Open(config.DriverSQLite, cfg.Store.SQLitePath)
	default:
		db, err := Open(config.DriverPostgres, cfg.Database.GetDSN())
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
		)
		return db, nil
	}
}

// NewClickHouse opens the event warehouse over the database/sql interface
func NewClickHouse(cfg *config.ClickHouseConfig) (*DB, error) {
	db, err := Open(DriverClickHouse, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	logger.Info("ClickHouse connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return db, nil
}

// Open connects to a postgres, sqlite3 or clickhouse database
func Open(driver, dsn string) (*DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	logger.Debug("database opened", zap.String("driver", driver))

	return &DB{conn: conn, driver: driver}, nil
}

// Close closes database connection
func (db *DB) Close() error {
	if db.conn != nil {
		logger.Info("closing database connection")
		return db.conn.Close()
	}
	return nil
}

// Conn returns underlying *sql.DB connection (for migrations)
func (db *DB) Conn() *sql.DB {
	return db.conn.DB
}

// DB returns sqlx.DB
func (db *DB) DB() *sqlx.DB {
	return db.conn
}

// Driver returns the driver name the connection was opened with
func (db *DB) Driver() string {
	return db.driver
}

// Health checks database health
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
