package models

import "time"

// Trend is the direction label assigned to an ingredient correlation
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
	TrendWeak     Trend = "weak"
)

// Severity buckets an actionable trend
type Severity string

const (
	SeverityHigh        Severity = "high"
	SeverityMedium      Severity = "medium"
	SeverityOpportunity Severity = "opportunity"
)

// IngredientCorrelation is the statistical relationship between one ingredient's cost and sales
type IngredientCorrelation struct {
	Ingredient                  string  `json:"ingredient"`
	CorrelationWithSales        float64 `json:"correlation_with_sales"`
	CorrelationWithTransactions float64 `json:"correlation_with_transactions"`
	PValueSales                 float64 `json:"p_value_sales"`
	PValueTransactions          float64 `json:"p_value_transactions"`
	Trend                       Trend   `json:"trend"`
	Insight                     string  `json:"insight"`
	CostChangePercent           float64 `json:"cost_change_percent"`
	SalesChangePercent          float64 `json:"sales_change_percent"`
	DataPoints                  int     `json:"data_points"`
	Significant                 bool    `json:"significant"`
}

// CorrelationSummary aggregates a whole correlation batch
type CorrelationSummary struct {
	TotalIngredientsAnalyzed int     `json:"total_ingredients_analyzed"`
	SignificantCorrelations  int     `json:"significant_correlations"`
	StrongestCorrelation     string  `json:"strongest_correlation,omitempty"`
	AvgCorrelationStrength   float64 `json:"avg_correlation_strength"`
	SkippedIngredients       int     `json:"skipped_ingredients"`
	FailedIngredients        int     `json:"failed_ingredients"`
}

// DateRange is the first and last joined day
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// CorrelationReport is the full output of one correlation run
type CorrelationReport struct {
	AnalysisDate           time.Time               `json:"analysis_date"`
	TotalDaysAnalyzed      int                     `json:"total_days_analyzed"`
	DateRange              DateRange               `json:"date_range"`
	IngredientCorrelations []IngredientCorrelation `json:"ingredient_correlations"`
	Summary                CorrelationSummary      `json:"summary"`
	DroppedSales           DropStats               `json:"dropped_sales"`
	DroppedCosts           DropStats               `json:"dropped_costs"`
}

// TrendAlert is an actionable classification of an ingredient correlation
type TrendAlert struct {
	Ingredient          string   `json:"ingredient"`
	Trend               string   `json:"trend"`
	Severity            Severity `json:"severity"`
	CorrelationStrength float64  `json:"correlation_strength"`
	ActionNeeded        bool     `json:"action_needed"`
}
