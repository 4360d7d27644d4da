package recommend

import (
	"fmt"

	"github.com/selivandex/menu-analytics/pkg/models"
)

// RuleBased composes a deterministic recommendation without a language model.
// Priority: first high-severity trend, then first opportunity, then first trend of any kind.
func RuleBased(trends []models.TrendAlert) ParsedResponse {
	if len(trends) == 0 {
		return ParsedResponse{
			Insight: "No significant trends detected in recent data.",
			Action:  "Continue monitoring key metrics and maintain current operational practices.",
			Outcome: "Stable business performance with early warning system in place.",
		}
	}

	if t, ok := firstWithSeverity(trends, models.SeverityHigh); ok {
		return ParsedResponse{
			Insight: fmt.Sprintf("%s. This is impacting your profit margins.", orDefault(t.Trend, "Significant price increase detected")),
			Action: fmt.Sprintf("Consider menu engineering: either adjust pricing for items using %s or temporarily feature alternative dishes with lower ingredient costs.",
				orDefault(t.Ingredient, "ingredient")),
			Outcome: "Improved profit margins while maintaining customer satisfaction through strategic menu adjustments.",
		}
	}

	if t, ok := firstWithSeverity(trends, models.SeverityOpportunity); ok {
		return ParsedResponse{
			Insight: fmt.Sprintf("%s. This is a chance to increase profitability.", orDefault(t.Trend, "Cost reduction opportunity detected")),
			Action: fmt.Sprintf("Create promotional campaigns featuring menu items that use %s to capitalize on lower costs and drive higher sales volume.",
				orDefault(t.Ingredient, "ingredient")),
			Outcome: "Increased sales volume and customer engagement while ingredient costs are favorable.",
		}
	}

	t := trends[0]
	return ParsedResponse{
		Insight: orDefault(t.Trend, "Market trend detected in your data."),
		Action:  fmt.Sprintf("Monitor %s closely and adjust purchasing strategies accordingly.", orDefault(t.Ingredient, "key ingredients")),
		Outcome: "Better inventory management and cost control through data-driven decision making.",
	}
}

func firstWithSeverity(trends []models.TrendAlert, severity models.Severity) (models.TrendAlert, bool) {
	for _, t := range trends {
		if t.Severity == severity {
			return t, true
		}
	}
	return models.TrendAlert{}, false
}
