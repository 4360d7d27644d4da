package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/menu-analytics/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		corr     models.IngredientCorrelation
		severity models.Severity
		text     string
		alert    bool
	}{
		{
			name:     "negative with large cost increase is high",
			corr:     models.IngredientCorrelation{Ingredient: "beef", Trend: models.TrendNegative, CostChangePercent: 25, SalesChangePercent: -12.34, CorrelationWithSales: -0.8},
			severity: models.SeverityHigh,
			text:     "beef price up 25.0%, sales down 12.3%",
			alert:    true,
		},
		{
			name:     "negative with moderate cost increase is medium",
			corr:     models.IngredientCorrelation{Ingredient: "beef", Trend: models.TrendNegative, CostChangePercent: 15, SalesChangePercent: 4, CorrelationWithSales: -0.6},
			severity: models.SeverityMedium,
			text:     "beef price up 15.0%, sales down 4.0%",
			alert:    true,
		},
		{
			name:  "negative with small cost increase is ignored",
			corr:  models.IngredientCorrelation{Ingredient: "beef", Trend: models.TrendNegative, CostChangePercent: 8},
			alert: false,
		},
		{
			name:  "exactly 20 percent stays medium",
			corr:  models.IngredientCorrelation{Ingredient: "beef", Trend: models.TrendNegative, CostChangePercent: 20, CorrelationWithSales: -0.7},
			alert: true, severity: models.SeverityMedium, text: "beef price up 20.0%, sales down 0.0%",
		},
		{
			name:     "positive with cost drop is an opportunity",
			corr:     models.IngredientCorrelation{Ingredient: "salmon", Trend: models.TrendPositive, CostChangePercent: -15.55, CorrelationWithSales: 0.9},
			severity: models.SeverityOpportunity,
			text:     "salmon price down 15.6%, opportunity to increase sales",
			alert:    true,
		},
		{
			name:  "positive with cost increase is ignored",
			corr:  models.IngredientCorrelation{Ingredient: "salmon", Trend: models.TrendPositive, CostChangePercent: 30},
			alert: false,
		},
		{
			name:  "weak trend is ignored",
			corr:  models.IngredientCorrelation{Ingredient: "rice", Trend: models.TrendWeak, CostChangePercent: 50},
			alert: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trends := Classify([]models.IngredientCorrelation{tt.corr})
			if !tt.alert {
				assert.Empty(t, trends)
				return
			}
			require.Len(t, trends, 1)
			assert.Equal(t, tt.severity, trends[0].Severity)
			assert.Equal(t, tt.text, trends[0].Trend)
			assert.Equal(t, tt.corr.Ingredient, trends[0].Ingredient)
			assert.True(t, trends[0].ActionNeeded)
			assert.GreaterOrEqual(t, trends[0].CorrelationStrength, 0.0)
		})
	}
}

func TestClassify_PreservesOrder(t *testing.T) {
	trends := Classify([]models.IngredientCorrelation{
		{Ingredient: "a", Trend: models.TrendPositive, CostChangePercent: -20},
		{Ingredient: "b", Trend: models.TrendWeak},
		{Ingredient: "c", Trend: models.TrendNegative, CostChangePercent: 30, CorrelationWithSales: -0.75},
	})

	require.Len(t, trends, 2)
	assert.Equal(t, "a", trends[0].Ingredient)
	assert.Equal(t, "c", trends[1].Ingredient)
	assert.Equal(t, 0.75, trends[1].CorrelationStrength)
}

func TestNewAlertPayload(t *testing.T) {
	tests := []struct {
		severity models.Severity
		icon     string
		action   string
	}{
		{models.SeverityHigh, "⚠️", "Consider finding alternative suppliers for cheese or adjust menu pricing to maintain margins."},
		{models.SeverityMedium, "📊", "Monitor cheese prices closely and consider bulk purchasing when prices are favorable."},
		{models.SeverityOpportunity, "💡", "Take advantage of lower cheese prices by promoting menu items that use this ingredient."},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			p := NewAlertPayload(models.TrendAlert{Ingredient: "cheese", Trend: "cheese moved", Severity: tt.severity, CorrelationStrength: 0.6})
			assert.Equal(t, "Trend Alert: cheese", p.Title)
			assert.Equal(t, "cheese moved", p.Insight)
			assert.Equal(t, tt.icon, p.Icon)
			assert.Equal(t, tt.action, p.SuggestedAction)
			assert.False(t, p.Read)
		})
	}
}
