package analytics

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
)

const (
	costIncreaseAlert = 10.0
	costIncreaseHigh  = 20.0
	costDecreaseAlert = -10.0
)

// Classify turns correlations into actionable trend alerts.
// Each correlation yields at most one alert; input order is preserved.
func Classify(correlations []models.IngredientCorrelation) []models.TrendAlert {
	trends := []models.TrendAlert{}

	for _, c := range correlations {
		switch {
		case c.Trend == models.TrendNegative && c.CostChangePercent > costIncreaseAlert:
			severity := models.SeverityMedium
			if c.CostChangePercent > costIncreaseHigh {
				severity = models.SeverityHigh
			}
			trends = append(trends, models.TrendAlert{
				Ingredient: c.Ingredient,
				Trend: fmt.Sprintf("%s price up %.1f%%, sales down %.1f%%",
					c.Ingredient, c.CostChangePercent, math.Abs(c.SalesChangePercent)),
				Severity:            severity,
				CorrelationStrength: math.Abs(c.CorrelationWithSales),
				ActionNeeded:        true,
			})

		case c.Trend == models.TrendPositive && c.CostChangePercent < costDecreaseAlert:
			trends = append(trends, models.TrendAlert{
				Ingredient: c.Ingredient,
				Trend: fmt.Sprintf("%s price down %.1f%%, opportunity to increase sales",
					c.Ingredient, math.Abs(c.CostChangePercent)),
				Severity:            models.SeverityOpportunity,
				CorrelationStrength: math.Abs(c.CorrelationWithSales),
				ActionNeeded:        true,
			})
		}
	}

	logger.Info("identified significant trends", zap.Int("count", len(trends)))

	return trends
}

// SuggestedAction is the short follow-up attached to a persisted trend alert
func SuggestedAction(t models.TrendAlert) string {
	switch t.Severity {
	case models.SeverityHigh:
		return fmt.Sprintf("Consider finding alternative suppliers for %s or adjust menu pricing to maintain margins.", t.Ingredient)
	case models.SeverityMedium:
		return fmt.Sprintf("Monitor %s prices closely and consider bulk purchasing when prices are favorable.", t.Ingredient)
	case models.SeverityOpportunity:
		return fmt.Sprintf("Take advantage of lower %s prices by promoting menu items that use this ingredient.", t.Ingredient)
	default:
		return fmt.Sprintf("Review %s usage patterns and optimize inventory management.", t.Ingredient)
	}
}

// NewAlertPayload builds the notification document for a trend alert
func NewAlertPayload(t models.TrendAlert) models.AlertPayload {
	return models.AlertPayload{
		Title:               fmt.Sprintf("Trend Alert: %s", t.Ingredient),
		Insight:             t.Trend,
		SuggestedAction:     SuggestedAction(t),
		Severity:            t.Severity,
		Ingredient:          t.Ingredient,
		CorrelationStrength: t.CorrelationStrength,
		Icon:                models.SeverityIcon(t.Severity),
		Read:                false,
	}
}
