package models

import "github.com/google/uuid"

const (
	AnalysisTypeCorrelation = "ingredient_sales_correlation"
	AnalysisStatusCompleted = "completed"

	NotificationTrendAlert       = "trend_alert"
	NotificationRecommendation   = "ai_recommendation"
	RecommendationTitle          = "AI Business Recommendation"
	IconRecommendationGenerated  = "🤖"
	IconRecommendationRuleBased  = "📋"
	iconHighSeverity             = "⚠️"
	iconOpportunity              = "💡"
	iconOther                    = "📊"
)

// Recommendation is the composed business advice for one set of trends
type Recommendation struct {
	Insight      string       `json:"insight"`
	Action       string       `json:"action"`
	Outcome      string       `json:"outcome"`
	SourceTrends []TrendAlert `json:"source_trends"`
	AIGenerated  bool         `json:"ai_generated"`
	Provider     string       `json:"provider,omitempty"`
}

// Icon returns the display icon for a recommendation document
func (r Recommendation) Icon() string {
	if r.AIGenerated {
		return IconRecommendationGenerated
	}
	return IconRecommendationRuleBased
}

// AlertPayload is the user-facing notification persisted for one TrendAlert
type AlertPayload struct {
	ID                  uuid.UUID
	Title               string
	Insight             string
	SuggestedAction     string
	Severity            Severity
	Ingredient          string
	CorrelationStrength float64
	Icon                string
	Read                bool
}

// SeverityIcon maps a severity to the notification icon
func SeverityIcon(s Severity) string {
	switch s {
	case SeverityHigh:
		return iconHighSeverity
	case SeverityOpportunity:
		return iconOpportunity
	default:
		return iconOther
	}
}
