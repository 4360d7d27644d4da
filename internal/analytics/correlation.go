package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
)

const (
	// trendThreshold is the |r| above which a correlation gets a direction label
	trendThreshold = 0.5
	// significanceLevel is the p-value cutoff for Significant
	significanceLevel = 0.05
)

// CorrelationEngine computes ingredient cost / sales correlations over joined daily rows
type CorrelationEngine struct {
	now func() time.Time
}

// NewCorrelationEngine creates a new correlation engine
func NewCorrelationEngine() *CorrelationEngine {
	return &CorrelationEngine{now: time.Now}
}

// ComputeCorrelations analyzes every ingredient column in rows.
// rows must be in ascending date order, as returned by Join.
func (e *CorrelationEngine) ComputeCorrelations(rows []models.JoinedRow) models.CorrelationReport {
	report := models.CorrelationReport{
		AnalysisDate:           e.now().UTC(),
		TotalDaysAnalyzed:      len(rows),
		IngredientCorrelations: []models.IngredientCorrelation{},
	}
	if len(rows) > 0 {
		start, end := rows[0].Date, rows[len(rows)-1].Date
		report.DateRange = models.DateRange{Start: &start, End: &end}
	}

	for _, ingredient := range ingredientColumns(rows) {
		corr, ok, err := analyzeIngredient(rows, ingredient)
		if err != nil {
			report.Summary.FailedIngredients++
			logger.Warn("correlation failed for ingredient",
				zap.String("ingredient", ingredient),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			report.Summary.SkippedIngredients++
			logger.Debug("not enough paired observations, skipping ingredient",
				zap.String("ingredient", ingredient),
			)
			continue
		}
		report.IngredientCorrelations = append(report.IngredientCorrelations, corr)
	}

	summarize(&report)

	logger.Info("calculated ingredient correlations",
		zap.Int("analyzed", report.Summary.TotalIngredientsAnalyzed),
		zap.Int("significant", report.Summary.SignificantCorrelations),
		zap.Int("skipped", report.Summary.SkippedIngredients),
		zap.Int("failed", report.Summary.FailedIngredients),
	)

	return report
}

// ingredientColumns returns every ingredient observed in rows, sorted by name
func ingredientColumns(rows []models.JoinedRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for name := range row.Costs {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// analyzeIngredient returns ok=false when fewer than minSamples valid pairs exist
func analyzeIngredient(rows []models.JoinedRow, ingredient string) (models.IngredientCorrelation, bool, error) {
	var sales, costs, txns, txnCosts []float64
	for _, row := range rows {
		cost, ok := row.Costs[ingredient]
		if !ok {
			continue
		}
		sales = append(sales, row.TotalSales)
		costs = append(costs, cost)
		txns = append(txns, float64(row.TransactionCount))
		txnCosts = append(txnCosts, cost)
	}

	if len(sales) < minSamples {
		return models.IngredientCorrelation{}, false, nil
	}

	rSales, pSales, err := pearson(sales, costs)
	if err != nil {
		return models.IngredientCorrelation{}, false, fmt.Errorf("sales correlation: %w", err)
	}

	rTxn, pTxn := 0.0, 1.0
	if len(txns) >= minSamples {
		rTxn, pTxn, err = pearson(txns, txnCosts)
		if err != nil {
			return models.IngredientCorrelation{}, false, fmt.Errorf("transaction correlation: %w", err)
		}
	}

	rSales = round(rSales, 4)
	pSales = round(pSales, 4)

	trend, insight := describeTrend(ingredient, rSales)

	return models.IngredientCorrelation{
		Ingredient:                  ingredient,
		CorrelationWithSales:        rSales,
		CorrelationWithTransactions: round(rTxn, 4),
		PValueSales:                 pSales,
		PValueTransactions:          round(pTxn, 4),
		Trend:                       trend,
		Insight:                     insight,
		CostChangePercent:           round(percentChange(costs[0], costs[len(costs)-1]), 2),
		SalesChangePercent:          round(percentChange(sales[0], sales[len(sales)-1]), 2),
		DataPoints:                  len(sales),
		Significant:                 pSales < significanceLevel,
	}, true, nil
}

func describeTrend(ingredient string, r float64) (models.Trend, string) {
	if math.Abs(r) > trendThreshold {
		if r > 0 {
			return models.TrendPositive, fmt.Sprintf("As %s cost increases, sales tend to increase", ingredient)
		}
		return models.TrendNegative, fmt.Sprintf("As %s cost increases, sales tend to decrease", ingredient)
	}
	return models.TrendWeak, fmt.Sprintf("No strong correlation between %s cost and sales", ingredient)
}

func summarize(report *models.CorrelationReport) {
	corrs := report.IngredientCorrelations
	report.Summary.TotalIngredientsAnalyzed = len(corrs)
	if len(corrs) == 0 {
		return
	}

	var total, strongest float64
	for i, c := range corrs {
		strength := math.Abs(c.CorrelationWithSales)
		total += strength
		if c.Significant {
			report.Summary.SignificantCorrelations++
		}
		// strict > keeps the first ingredient on ties
		if i == 0 || strength > strongest {
			strongest = strength
			report.Summary.StrongestCorrelation = c.Ingredient
		}
	}
	report.Summary.AvgCorrelationStrength = total / float64(len(corrs))
}
