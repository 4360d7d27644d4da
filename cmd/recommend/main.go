package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/ai"
	"github.com/selivandex/menu-analytics/internal/adapters/store"
	"github.com/selivandex/menu-analytics/internal/bootstrap"
	"github.com/selivandex/menu-analytics/internal/pipeline"
	"github.com/selivandex/menu-analytics/internal/recommend"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

func main() {
	ctx, cancel := bootstrap.SignalContext()
	defer cancel()

	app := &cli.App{
		Name:   "recommend",
		Usage:  "Turn the latest stored trends into a business recommendation",
		Action: run,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := bootstrap.InitConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := bootstrap.InitStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	renderer, err := bootstrap.InitTemplates(&cfg.Templates)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	chain := ai.NewChainFromConfig(&cfg.AI)
	if chain.IsEnabled() {
		logger.Info("AI providers configured", zap.String("chain", chain.GetName()))
	} else {
		logger.Warn("no AI provider enabled, using rule-based recommendations")
	}

	runMetrics, closeMetrics := bootstrap.InitMetrics(db)
	defer closeMetrics()

	composer := recommend.NewComposer(chain, renderer, cfg.AI.Timeout)
	outcome, err := pipeline.NewRecommendationPipeline(store.NewRepository(db.DB()), composer).
		WithMetrics(runMetrics).
		Run(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", outcome.Recommendation.Icon(), outcome.Recommendation.Insight)
	return nil
}
