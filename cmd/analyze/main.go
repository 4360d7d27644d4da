package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	redisAdapter "github.com/selivandex/menu-analytics/internal/adapters/redis"
	"github.com/selivandex/menu-analytics/internal/adapters/store"
	"github.com/selivandex/menu-analytics/internal/adapters/telegram"
	"github.com/selivandex/menu-analytics/internal/bootstrap"
	"github.com/selivandex/menu-analytics/internal/health"
	"github.com/selivandex/menu-analytics/internal/pipeline"
	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/worker"
)

func main() {
	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	app := &cli.App{
		Name:  "analyze",
		Usage: "Correlate ingredient costs with sales and store trend alerts",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Usage: "Lookback window in days (overrides ANALYSIS_LOOKBACK_DAYS)",
			},
			&cli.DurationFlag{
				Name:  "every",
				Usage: "Re-run the analysis on this interval until interrupted (overrides ANALYSIS_INTERVAL)",
			},
			&cli.StringFlag{
				Name:    "health-port",
				Usage:   "Serve /health and /ready on this port while running periodically",
				EnvVars: []string{"HEALTH_PORT"},
			},
		},
		Action: run,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx := c.Context

	cfg, err := bootstrap.InitConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	days := cfg.Analysis.LookbackDays
	if c.IsSet("days") {
		days = c.Int("days")
	}
	every := cfg.Analysis.Interval
	if c.IsSet("every") {
		every = c.Duration("every")
	}

	logger.Info("menu analytics starting",
		zap.Int("days", days),
		zap.Duration("every", every),
		zap.String("store", cfg.Store.Driver),
	)

	db, err := bootstrap.InitStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eventRepo, closeEvents := bootstrap.InitEvents(cfg, db)
	defer closeEvents()

	runMetrics, closeMetrics := bootstrap.InitMetrics(db)
	defer closeMetrics()

	checks := map[string]health.Check{"database": db.Health}

	deps := pipeline.AnalysisDeps{
		Events:  eventRepo,
		Store:   store.NewRepository(db.DB()),
		Locks:   redisAdapter.NewLocalLockFactory(),
		Metrics: runMetrics,
	}

	if cfg.Redis.Enabled {
		redisClient, err := redisAdapter.New(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisClient.Close()

		deps.Locks = redisClient.GetLockFactory()
		deps.Tracker = redisClient
		checks["redis"] = redisClient.Health
		logPreviousRun(ctx, redisClient, days)
	}

	if cfg.Telegram.Enabled {
		notifier, err := initNotifier(cfg)
		if err != nil {
			logger.Warn("telegram alerts disabled", zap.Error(err))
		} else {
			deps.Notifier = notifier
		}
	}

	analysis := pipeline.NewAnalysisPipeline(deps)

	if every <= 0 {
		_, err := analysis.Run(ctx, days)
		return err
	}

	pw := worker.RunBackground(ctx, &analysisWorker{pipeline: analysis, days: days}, every)

	if port := c.String("health-port"); port != "" {
		healthServer := health.NewServer(port, checks, pw)
		go func() {
			if err := healthServer.Start(); err != nil {
				logger.Error("health check server failed", zap.Error(err))
			}
		}()
		healthServer.SetReady(true)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthServer.Stop(shutdownCtx); err != nil {
				logger.Warn("failed to stop health check server", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	pw.Wait()

	logger.Info("periodic analysis stopped",
		zap.Int64("runs", pw.Runs()),
		zap.Int64("failures", pw.Failures()),
	)
	return nil
}

func initNotifier(cfg *config.Config) (*telegram.Notifier, error) {
	renderer, err := bootstrap.InitTemplates(&cfg.Templates)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return telegram.NewNotifier(&cfg.Telegram, renderer)
}

func logPreviousRun(ctx context.Context, client *redisAdapter.Client, days int) {
	at, ok, err := client.LastCompleted(ctx, fmt.Sprint(days))
	if err != nil {
		logger.Warn("failed to read previous run", zap.Error(err))
		return
	}
	if ok {
		logger.Info("previous analysis for window",
			zap.Int("days", days),
			zap.Time("completed_at", at),
			zap.Duration("age", time.Since(at)),
		)
	}
}

// analysisWorker adapts the pipeline to the periodic runner
type analysisWorker struct {
	pipeline *pipeline.AnalysisPipeline
	days     int
}

func (w *analysisWorker) Name() string {
	return fmt.Sprintf("analysis_%dd", w.days)
}

func (w *analysisWorker) Run(ctx context.Context) error {
	_, err := w.pipeline.Run(ctx, w.days)
	if errors.Is(err, pipeline.ErrWindowLocked) {
		logger.Info("window analysed elsewhere, skipping", zap.Int("days", w.days))
		return nil
	}
	return err
}
