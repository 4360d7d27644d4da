package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/internal/adapters/database"
	"github.com/selivandex/menu-analytics/pkg/models"
)

func setupRepository(t *testing.T) (*Repository, *database.DB) {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db))

	return NewRepository(db.DB()), db
}

func sampleTrends() []models.TrendAlert {
	return []models.TrendAlert{
		{Ingredient: "beef", Trend: "beef price up 25.0%, sales down 10.0%", Severity: models.SeverityHigh, CorrelationStrength: 0.8, ActionNeeded: true},
		{Ingredient: "salmon", Trend: "salmon price down 15.0%, opportunity to increase sales", Severity: models.SeverityOpportunity, CorrelationStrength: 0.7, ActionNeeded: true},
	}
}

func samplePayloads() []models.AlertPayload {
	return []models.AlertPayload{
		{Title: "Trend Alert: beef", Insight: "beef up", SuggestedAction: "act", Severity: models.SeverityHigh, Ingredient: "beef", CorrelationStrength: 0.8, Icon: "⚠️"},
		{Title: "Trend Alert: salmon", Insight: "salmon down", SuggestedAction: "promote", Severity: models.SeverityOpportunity, Ingredient: "salmon", CorrelationStrength: 0.7, Icon: "💡"},
	}
}

func TestSaveAnalysis_ResultAndAlerts(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	report := models.CorrelationReport{TotalDaysAnalyzed: 30}
	resultID, alertIDs, err := repo.SaveAnalysis(ctx, report, sampleTrends(), samplePayloads())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resultID)
	require.Len(t, alertIDs, 2)

	var stored struct {
		AnalysisType string `db:"analysis_type"`
		Status       string `db:"status"`
		Correlations string `db:"correlations"`
	}
	require.NoError(t, db.DB().Get(&stored, "SELECT analysis_type, status, correlations FROM processed_stats WHERE id = ?", resultID.String()))
	assert.Equal(t, models.AnalysisTypeCorrelation, stored.AnalysisType)
	assert.Equal(t, models.AnalysisStatusCompleted, stored.Status)

	var decoded models.CorrelationReport
	require.NoError(t, json.Unmarshal([]byte(stored.Correlations), &decoded))
	assert.Equal(t, 30, decoded.TotalDaysAnalyzed)

	var alerts []struct {
		Type   string `db:"type"`
		Icon   string `db:"icon"`
		Read   bool   `db:"read"`
		Ingred string `db:"ingredient"`
	}
	require.NoError(t, db.DB().Select(&alerts, "SELECT type, icon, read, ingredient FROM recommendations ORDER BY seq"))
	require.Len(t, alerts, 2)
	assert.Equal(t, models.NotificationTrendAlert, alerts[0].Type)
	assert.Equal(t, "⚠️", alerts[0].Icon)
	assert.False(t, alerts[0].Read)
	assert.Equal(t, "salmon", alerts[1].Ingred)
}

func TestSaveAnalysis_RollsBackOnAlertFailure(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	dup := uuid.New()
	payloads := samplePayloads()
	payloads[0].ID = dup
	payloads[1].ID = dup

	_, _, err := repo.SaveAnalysis(ctx, models.CorrelationReport{}, sampleTrends(), payloads)
	require.Error(t, err)
	assert.Contains(t, err.Error(), dup.String())

	var count int
	require.NoError(t, db.DB().Get(&count, "SELECT COUNT(*) FROM processed_stats"))
	assert.Equal(t, 0, count)
	require.NoError(t, db.DB().Get(&count, "SELECT COUNT(*) FROM recommendations"))
	assert.Equal(t, 0, count)
}

func TestReadLatestAnalysisTrends(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	trends, err := repo.ReadLatestAnalysisTrends(ctx)
	require.NoError(t, err)
	assert.NotNil(t, trends)
	assert.Empty(t, trends)

	_, err = repo.WriteAnalysisResult(ctx, models.CorrelationReport{}, sampleTrends()[:1])
	require.NoError(t, err)
	_, err = repo.WriteAnalysisResult(ctx, models.CorrelationReport{}, sampleTrends()[1:])
	require.NoError(t, err)

	trends, err = repo.ReadLatestAnalysisTrends(ctx)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "salmon", trends[0].Ingredient)
	assert.Equal(t, models.SeverityOpportunity, trends[0].Severity)
	assert.True(t, trends[0].ActionNeeded)

	_, err = repo.WriteAnalysisResult(ctx, models.CorrelationReport{}, nil)
	require.NoError(t, err)

	trends, err = repo.ReadLatestAnalysisTrends(ctx)
	require.NoError(t, err)
	assert.NotNil(t, trends)
	assert.Empty(t, trends)
}

func TestWriteAlert(t *testing.T) {
	repo, db := setupRepository(t)

	id, err := repo.WriteAlert(context.Background(), samplePayloads()[1])
	require.NoError(t, err)

	var title string
	require.NoError(t, db.DB().Get(&title, "SELECT title FROM recommendations WHERE id = ?", id.String()))
	assert.Equal(t, "Trend Alert: salmon", title)
}

func TestWriteRecommendation(t *testing.T) {
	repo, db := setupRepository(t)

	tests := []struct {
		name string
		rec  models.Recommendation
		icon string
	}{
		{
			name: "model generated",
			rec:  models.Recommendation{Insight: "i", Action: "a", Outcome: "o", SourceTrends: sampleTrends(), AIGenerated: true},
			icon: "🤖",
		},
		{
			name: "rule based",
			rec:  models.Recommendation{Insight: "i", Action: "a", Outcome: "o"},
			icon: "📋",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.WriteRecommendation(context.Background(), tt.rec)
			require.NoError(t, err)

			var stored struct {
				Type         string `db:"type"`
				Title        string `db:"title"`
				Outcome      string `db:"expected_outcome"`
				SourceTrends string `db:"source_trends"`
				AIGenerated  bool   `db:"ai_generated"`
				Icon         string `db:"icon"`
				Read         bool   `db:"read"`
			}
			require.NoError(t, db.DB().Get(&stored, `
				SELECT type, title, expected_outcome, source_trends, ai_generated, icon, read
				FROM recommendations WHERE id = ?`, id.String()))

			assert.Equal(t, models.NotificationRecommendation, stored.Type)
			assert.Equal(t, models.RecommendationTitle, stored.Title)
			assert.Equal(t, "o", stored.Outcome)
			assert.Equal(t, tt.rec.AIGenerated, stored.AIGenerated)
			assert.Equal(t, tt.icon, stored.Icon)
			assert.False(t, stored.Read)

			var trends []models.TrendAlert
			require.NoError(t, json.Unmarshal([]byte(stored.SourceTrends), &trends))
			assert.Len(t, trends, len(tt.rec.SourceTrends))
		})
	}
}
