package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/selivandex/menu-analytics/pkg/models"
)

// EventSource reads raw sales and ingredient cost events
type EventSource interface {
	ReadSales(ctx context.Context, since time.Time) ([]models.SalesRecord, error)
	ReadCosts(ctx context.Context, since time.Time) ([]models.CostRecord, error)
}

// AnalysisStore persists one analysis result together with its alerts
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, report models.CorrelationReport, trends []models.TrendAlert, alerts []models.AlertPayload) (uuid.UUID, []uuid.UUID, error)
}

// RecommendationStore reads the latest trends and persists recommendations
type RecommendationStore interface {
	ReadLatestAnalysisTrends(ctx context.Context) ([]models.TrendAlert, error)
	WriteRecommendation(ctx context.Context, rec models.Recommendation) (uuid.UUID, error)
}

// AlertNotifier pushes persisted alerts to users
type AlertNotifier interface {
	NotifyAlerts(ctx context.Context, alerts []models.AlertPayload) error
}

// RunTracker records when a window was last analysed successfully
type RunTracker interface {
	MarkCompleted(ctx context.Context, window string, at time.Time) error
}

// Composer produces a recommendation from trends and never fails
type Composer interface {
	Compose(ctx context.Context, trends []models.TrendAlert) models.Recommendation
}
