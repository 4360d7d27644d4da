package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/redis"
	"github.com/selivandex/menu-analytics/internal/analytics"
	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/metrics"
	"github.com/selivandex/menu-analytics/pkg/models"
)

// AnalysisDeps are the collaborators of the analysis pipeline.
// Notifier, Tracker and Metrics are optional.
type AnalysisDeps struct {
	Events   EventSource
	Store    AnalysisStore
	Locks    redis.LockFactory
	Notifier AlertNotifier
	Tracker  RunTracker
	Metrics  metrics.Recorder
}

// AnalysisOutcome summarises one successful analysis run
type AnalysisOutcome struct {
	ResultID uuid.UUID
	AlertIDs []uuid.UUID
	Report   models.CorrelationReport
	Trends   []models.TrendAlert
}

// AnalysisPipeline runs fetch, aggregate, join, correlate, classify and persist for one window
type AnalysisPipeline struct {
	deps   AnalysisDeps
	engine *analytics.CorrelationEngine
	now    func() time.Time
}

// NewAnalysisPipeline creates new analysis pipeline
func NewAnalysisPipeline(deps AnalysisDeps) *AnalysisPipeline {
	if deps.Locks == nil {
		deps.Locks = redis.NewLocalLockFactory()
	}
	return &AnalysisPipeline{
		deps:   deps,
		engine: analytics.NewCorrelationEngine(),
		now:    time.Now,
	}
}

// Run analyses the last days of events and persists the result with its alerts
func (p *AnalysisPipeline) Run(ctx context.Context, days int) (*AnalysisOutcome, error) {
	if days < 1 {
		return nil, fmt.Errorf("lookback days must be positive, got %d", days)
	}

	window := strconv.Itoa(days)
	lock := p.deps.Locks.CreateWindowLock(window)

	acquired, err := lock.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", lock.Key(), err)
	}
	if !acquired {
		return nil, fmt.Errorf("%s: %w", lock.Key(), ErrWindowLocked)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release window lock", zap.String("lock", lock.Key()), zap.Error(err))
		}
	}()

	started := p.now()
	since := startOfDay(started).AddDate(0, 0, -days)

	logger.Info("starting correlation analysis",
		zap.Int("days", days),
		zap.Time("since", since),
	)

	sales, err := p.deps.Events.ReadSales(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: read sales: %w", analytics.ErrDataUnavailable, err)
	}
	if len(sales) == 0 {
		return nil, fmt.Errorf("no sales records since %s: %w", since.Format(time.DateOnly), analytics.ErrDataUnavailable)
	}

	costs, err := p.deps.Events.ReadCosts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: read ingredient costs: %w", analytics.ErrDataUnavailable, err)
	}
	if len(costs) == 0 {
		return nil, fmt.Errorf("no ingredient cost records since %s: %w", since.Format(time.DateOnly), analytics.ErrDataUnavailable)
	}

	daily, salesDrops := analytics.AggregateSales(sales)
	matrix, costDrops := analytics.AggregateCosts(costs)

	rows, err := analytics.Join(daily, matrix)
	if err != nil {
		return nil, err
	}

	report := p.engine.ComputeCorrelations(rows)
	report.DroppedSales = salesDrops
	report.DroppedCosts = costDrops

	trends := analytics.Classify(report.IngredientCorrelations)

	alerts := make([]models.AlertPayload, 0, len(trends))
	for _, t := range trends {
		if t.ActionNeeded {
			alerts = append(alerts, analytics.NewAlertPayload(t))
		}
	}

	resultID, alertIDs, err := p.deps.Store.SaveAnalysis(ctx, report, trends, alerts)
	if err != nil {
		logger.Error("failed to persist analysis",
			zap.Int("trends", len(trends)),
			zap.Int("alerts", len(alerts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: save analysis: %w", ErrPersistence, err)
	}

	for i := 0; i < len(alerts) && i < len(alertIDs); i++ {
		alerts[i].ID = alertIDs[i]
	}

	p.notify(ctx, alerts)
	p.markCompleted(ctx, window)
	p.record(&metrics.AnalysisRunMetric{
		Timestamp:               started,
		WindowDays:              days,
		DaysAnalyzed:            report.TotalDaysAnalyzed,
		IngredientsAnalyzed:     report.Summary.TotalIngredientsAnalyzed,
		SignificantCorrelations: report.Summary.SignificantCorrelations,
		Trends:                  len(trends),
		Alerts:                  len(alerts),
		Duration:                time.Since(started),
	})

	logger.Info("correlation analysis completed",
		zap.String("result_id", resultID.String()),
		zap.Int("days_analyzed", report.TotalDaysAnalyzed),
		zap.Int("ingredients", report.Summary.TotalIngredientsAnalyzed),
		zap.Int("significant", report.Summary.SignificantCorrelations),
		zap.Int("trends", len(trends)),
		zap.Duration("duration", time.Since(started)),
	)

	return &AnalysisOutcome{
		ResultID: resultID,
		AlertIDs: alertIDs,
		Report:   report,
		Trends:   trends,
	}, nil
}

// notify is best effort; the analysis is already persisted
func (p *AnalysisPipeline) notify(ctx context.Context, alerts []models.AlertPayload) {
	if p.deps.Notifier == nil || len(alerts) == 0 {
		return
	}
	if err := p.deps.Notifier.NotifyAlerts(ctx, alerts); err != nil {
		logger.Warn("failed to push trend alerts", zap.Int("alerts", len(alerts)), zap.Error(err))
	}
}

func (p *AnalysisPipeline) markCompleted(ctx context.Context, window string) {
	if p.deps.Tracker == nil {
		return
	}
	if err := p.deps.Tracker.MarkCompleted(ctx, window, p.now()); err != nil {
		logger.Warn("failed to record completed run", zap.String("window", window), zap.Error(err))
	}
}

func (p *AnalysisPipeline) record(m metrics.Metric) {
	if p.deps.Metrics == nil {
		return
	}
	if err := p.deps.Metrics.Add(m); err != nil {
		logger.Warn("failed to record run metric", zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
