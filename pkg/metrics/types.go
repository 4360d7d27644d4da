package metrics

import "time"

// AnalysisRunMetric records one completed correlation analysis
type AnalysisRunMetric struct {
	Timestamp               time.Time
	WindowDays              int
	DaysAnalyzed            int
	IngredientsAnalyzed     int
	SignificantCorrelations int
	Trends                  int
	Alerts                  int
	Duration                time.Duration
}

func (m *AnalysisRunMetric) TableName() string {
	return "analysis_run_metrics"
}

func (m *AnalysisRunMetric) Columns() []string {
	return []string{
		"recorded_at",
		"window_days",
		"days_analyzed",
		"ingredients_analyzed",
		"significant_correlations",
		"trends",
		"alerts",
		"duration_ms",
	}
}

func (m *AnalysisRunMetric) Values() []any {
	return []any{
		m.Timestamp,
		m.WindowDays,
		m.DaysAnalyzed,
		m.IngredientsAnalyzed,
		m.SignificantCorrelations,
		m.Trends,
		m.Alerts,
		m.Duration.Milliseconds(),
	}
}

// RecommendationRunMetric records one stored recommendation
type RecommendationRunMetric struct {
	Timestamp    time.Time
	SourceTrends int
	AIGenerated  bool
	Provider     string
	Duration     time.Duration
}

func (m *RecommendationRunMetric) TableName() string {
	return "recommendation_run_metrics"
}

func (m *RecommendationRunMetric) Columns() []string {
	return []string{"recorded_at", "source_trends", "ai_generated", "provider", "duration_ms"}
}

func (m *RecommendationRunMetric) Values() []any {
	return []any{m.Timestamp, m.SourceTrends, m.AIGenerated, m.Provider, m.Duration.Milliseconds()}
}
