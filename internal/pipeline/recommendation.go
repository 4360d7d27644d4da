package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/metrics"
	"github.com/selivandex/menu-analytics/pkg/models"
)

// RecommendationOutcome summarises one recommendation run
type RecommendationOutcome struct {
	RecommendationID uuid.UUID
	Recommendation   models.Recommendation
}

// RecommendationPipeline turns the latest stored trends into a persisted recommendation
type RecommendationPipeline struct {
	store    RecommendationStore
	composer Composer
	metrics  metrics.Recorder
}

// NewRecommendationPipeline creates new recommendation pipeline
func NewRecommendationPipeline(store RecommendationStore, composer Composer) *RecommendationPipeline {
	return &RecommendationPipeline{store: store, composer: composer}
}

// WithMetrics records a metric for every stored recommendation
func (p *RecommendationPipeline) WithMetrics(recorder metrics.Recorder) *RecommendationPipeline {
	p.metrics = recorder
	return p
}

// Run reads the latest trends, composes a recommendation and stores it
func (p *RecommendationPipeline) Run(ctx context.Context) (*RecommendationOutcome, error) {
	started := time.Now()

	trends, err := p.store.ReadLatestAnalysisTrends(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read latest trends: %w", ErrPersistence, err)
	}

	logger.Info("generating recommendation", zap.Int("trends", len(trends)))

	rec := p.composer.Compose(ctx, trends)

	id, err := p.store.WriteRecommendation(ctx, rec)
	if err != nil {
		logger.Error("failed to persist recommendation",
			zap.Bool("ai_generated", rec.AIGenerated),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: write recommendation: %w", ErrPersistence, err)
	}

	logger.Info("recommendation stored",
		zap.String("recommendation_id", id.String()),
		zap.Bool("ai_generated", rec.AIGenerated),
		zap.String("provider", rec.Provider),
	)

	if p.metrics != nil {
		err := p.metrics.Add(&metrics.RecommendationRunMetric{
			Timestamp:    started,
			SourceTrends: len(trends),
			AIGenerated:  rec.AIGenerated,
			Provider:     rec.Provider,
			Duration:     time.Since(started),
		})
		if err != nil {
			logger.Warn("failed to record run metric", zap.Error(err))
		}
	}

	return &RecommendationOutcome{RecommendationID: id, Recommendation: rec}, nil
}
