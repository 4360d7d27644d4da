package pipeline_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/menu-analytics/internal/adapters/database/testdb"
	"github.com/selivandex/menu-analytics/internal/adapters/events"
	"github.com/selivandex/menu-analytics/internal/adapters/store"
	"github.com/selivandex/menu-analytics/internal/pipeline"
	"github.com/selivandex/menu-analytics/internal/recommend"
	"github.com/selivandex/menu-analytics/pkg/models"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

func TestAnalysisThenRecommendation(t *testing.T) {
	db := testdb.Setup(t)
	ctx := context.Background()

	today := time.Now().UTC()
	for d := 0; d < 5; d++ {
		date := today.AddDate(0, 0, d-5).Format(time.DateOnly)
		testdb.SeedSales(t, db, models.SalesRecord{
			ID: fmt.Sprintf("s%d", d), Date: date, Amount: fmt.Sprintf("%d", 100-10*d),
			ItemName: "burger", OrderNumber: fmt.Sprintf("o%d", d),
		})
		testdb.SeedCosts(t, db, models.CostRecord{
			ID: fmt.Sprintf("b%d", d), Date: date, Amount: fmt.Sprintf("%d", 10+d), IngredientName: "beef",
		})
	}
	// outside a 30 day window
	testdb.SeedCosts(t, db, models.CostRecord{
		ID: "old", Date: today.AddDate(0, 0, -60).Format(time.DateOnly), Amount: "1", IngredientName: "beef",
	})

	repo := store.NewRepository(db.DB())

	analysis := pipeline.NewAnalysisPipeline(pipeline.AnalysisDeps{
		Events: events.NewRepository(db.DB()),
		Store:  repo,
	})
	outcome, err := analysis.Run(ctx, 30)
	require.NoError(t, err)

	assert.Equal(t, 5, outcome.Report.TotalDaysAnalyzed)
	require.Len(t, outcome.Trends, 1)
	assert.Equal(t, "beef price up 40.0%, sales down 40.0%", outcome.Trends[0].Trend)
	assert.Equal(t, 1, testdb.Count(t, db, "processed_stats"))
	assert.Equal(t, 1, testdb.Count(t, db, "recommendations"), "one trend alert")

	renderer, err := templates.NewDefaultManager()
	require.NoError(t, err)

	rec, err := pipeline.NewRecommendationPipeline(repo, recommend.NewComposer(nil, renderer, time.Second)).Run(ctx)
	require.NoError(t, err)

	assert.False(t, rec.Recommendation.AIGenerated)
	assert.Equal(t, outcome.Trends, rec.Recommendation.SourceTrends)
	assert.Equal(t, "beef price up 40.0%, sales down 40.0%. This is impacting your profit margins.", rec.Recommendation.Insight)
	assert.Equal(t, 2, testdb.Count(t, db, "recommendations"))
}
