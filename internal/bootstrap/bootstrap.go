package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/internal/adapters/database"
	"github.com/selivandex/menu-analytics/internal/adapters/events"
	metricsAdapter "github.com/selivandex/menu-analytics/internal/adapters/metrics"
	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/metrics"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nReceived interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// InitConfig loads configuration and initializes the global logger
func InitConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// InitStore opens the result store and applies migrations when enabled
func InitStore(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if cfg.Store.Migrate {
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else if version, dirty, err := database.GetMigrationVersion(db); err != nil {
		logger.Warn("failed to read schema version", zap.Error(err))
	} else {
		logger.Info("using existing schema", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	return db, nil
}

// InitTemplates loads templates from the configured directory, or the built-in set
func InitTemplates(cfg *config.TemplatesConfig) (*templates.Manager, error) {
	if cfg.Dir == "" {
		return templates.NewDefaultManager()
	}
	return templates.NewManager(cfg.Dir)
}

// InitEvents picks the event source: ClickHouse when enabled and reachable,
// otherwise the primary store. The returned closer is never nil.
func InitEvents(cfg *config.Config, store *database.DB) (*events.Repository, func()) {
	if !cfg.ClickHouse.Enabled {
		return events.NewRepository(store.DB()), func() {}
	}

	chDB, err := database.NewClickHouse(&cfg.ClickHouse)
	if err != nil {
		logger.Warn("ClickHouse not available, reading events from primary store", zap.Error(err))
		return events.NewRepository(store.DB()), func() {}
	}

	logger.Info("event source using ClickHouse")
	return events.NewRepository(chDB.DB()), func() { chDB.Close() }
}

// InitMetrics buffers run metrics into the result store. The returned closer
// flushes whatever is still buffered.
func InitMetrics(store *database.DB) (*metrics.BufferedMetrics, func()) {
	buffer := metrics.NewBufferedMetrics(metrics.BufferConfig{
		Writer:        metricsAdapter.NewWriter(metricsAdapter.NewSQLRepository(store.DB())),
		BatchSize:     50,
		FlushInterval: time.Minute,
	})

	return buffer, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := buffer.Close(ctx); err != nil {
			logger.Warn("failed to flush run metrics", zap.Error(err))
		}
	}
}
