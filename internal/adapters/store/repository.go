package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
)

// Repository persists analysis results, alerts and recommendations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new result store repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveAnalysis writes the analysis result and one alert per actionable trend in a single transaction
func (r *Repository) SaveAnalysis(ctx context.Context, report models.CorrelationReport, trends []models.TrendAlert, alerts []models.AlertPayload) (uuid.UUID, []uuid.UUID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	resultID, err := insertAnalysisResult(ctx, tx, report, trends)
	if err != nil {
		return uuid.Nil, nil, err
	}

	alertIDs := make([]uuid.UUID, 0, len(alerts))
	for _, alert := range alerts {
		id, err := insertAlert(ctx, tx, alert)
		if err != nil {
			return uuid.Nil, nil, err
		}
		alertIDs = append(alertIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to commit analysis %s: %w", resultID, err)
	}

	logger.Info("analysis saved",
		zap.String("result_id", resultID.String()),
		zap.Int("alerts", len(alertIDs)),
	)

	return resultID, alertIDs, nil
}

// WriteAnalysisResult persists one immutable analysis document
func (r *Repository) WriteAnalysisResult(ctx context.Context, report models.CorrelationReport, trends []models.TrendAlert) (uuid.UUID, error) {
	return insertAnalysisResult(ctx, r.db, report, trends)
}

// WriteAlert persists one trend alert notification
func (r *Repository) WriteAlert(ctx context.Context, alert models.AlertPayload) (uuid.UUID, error) {
	return insertAlert(ctx, r.db, alert)
}

// WriteRecommendation persists a composed recommendation as a notification document
func (r *Repository) WriteRecommendation(ctx context.Context, rec models.Recommendation) (uuid.UUID, error) {
	id := uuid.New()

	sourceTrends, err := json.Marshal(nonNilTrends(rec.SourceTrends))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal source trends for recommendation %s: %w", id, err)
	}

	query := r.db.Rebind(`
		INSERT INTO recommendations (
			id, type, title, insight, suggested_action, expected_outcome,
			source_trends, ai_generated, icon, read
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err = r.db.ExecContext(ctx, query,
		id.String(),
		models.NotificationRecommendation,
		models.RecommendationTitle,
		rec.Insight,
		rec.Action,
		rec.Outcome,
		string(sourceTrends),
		rec.AIGenerated,
		rec.Icon(),
		false,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert recommendation %s: %w", id, err)
	}

	logger.Info("recommendation saved",
		zap.String("recommendation_id", id.String()),
		zap.Bool("ai_generated", rec.AIGenerated),
	)

	return id, nil
}

// ReadLatestAnalysisTrends returns the trends of the most recently written analysis result.
// An empty store yields an empty slice.
func (r *Repository) ReadLatestAnalysisTrends(ctx context.Context) ([]models.TrendAlert, error) {
	var row struct {
		ID     string `db:"id"`
		Trends string `db:"trends"`
	}

	query := r.db.Rebind(`
		SELECT id, trends FROM processed_stats
		WHERE analysis_type = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`)

	err := r.db.GetContext(ctx, &row, query, models.AnalysisTypeCorrelation)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Warn("no analysis results found")
		return []models.TrendAlert{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest analysis: %w", err)
	}

	var trends []models.TrendAlert
	if err := json.Unmarshal([]byte(row.Trends), &trends); err != nil {
		return nil, fmt.Errorf("failed to decode trends of analysis %s: %w", row.ID, err)
	}

	logger.Debug("latest analysis trends loaded",
		zap.String("result_id", row.ID),
		zap.Int("trends", len(trends)),
	)

	return nonNilTrends(trends), nil
}

func insertAnalysisResult(ctx context.Context, db sqlx.ExtContext, report models.CorrelationReport, trends []models.TrendAlert) (uuid.UUID, error) {
	id := uuid.New()

	correlations, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal correlations for analysis %s: %w", id, err)
	}
	trendsJSON, err := json.Marshal(nonNilTrends(trends))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal trends for analysis %s: %w", id, err)
	}

	query := db.Rebind(`
		INSERT INTO processed_stats (id, analysis_type, status, correlations, trends)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err = db.ExecContext(ctx, query,
		id.String(),
		models.AnalysisTypeCorrelation,
		models.AnalysisStatusCompleted,
		string(correlations),
		string(trendsJSON),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert analysis %s: %w", id, err)
	}

	return id, nil
}

func insertAlert(ctx context.Context, db sqlx.ExtContext, alert models.AlertPayload) (uuid.UUID, error) {
	id := alert.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := db.Rebind(`
		INSERT INTO recommendations (
			id, type, title, insight, suggested_action, severity,
			ingredient, correlation_strength, icon, read
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := db.ExecContext(ctx, query,
		id.String(),
		models.NotificationTrendAlert,
		alert.Title,
		alert.Insight,
		alert.SuggestedAction,
		string(alert.Severity),
		alert.Ingredient,
		alert.CorrelationStrength,
		alert.Icon,
		alert.Read,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert alert %s (%s): %w", id, alert.Ingredient, err)
	}

	return id, nil
}

func nonNilTrends(trends []models.TrendAlert) []models.TrendAlert {
	if trends == nil {
		return []models.TrendAlert{}
	}
	return trends
}
