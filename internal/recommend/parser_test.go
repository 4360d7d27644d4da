package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ParsedResponse
	}{
		{
			name: "plain sections",
			text: "Insight: Costs rising.\nAction: Raise prices.\nOutcome: Higher margin.",
			want: ParsedResponse{Insight: "Costs rising.", Action: "Raise prices.", Outcome: "Higher margin."},
		},
		{
			name: "markdown numbered headings",
			text: "1. **Insight**: Beef costs are squeezing margins.\n" +
				"2. **Recommended Action**: Feature chicken dishes this week.\n" +
				"3. **Expected Outcome**: Margins recover by 3%.",
			want: ParsedResponse{
				Insight: "Beef costs are squeezing margins.",
				Action:  "Feature chicken dishes this week.",
				Outcome: "Margins recover by 3%.",
			},
		},
		{
			name: "bold label with colon inside",
			text: "**Insight:** Salmon is cheap.\n**Action:** Promote sushi.\n**Outcome:** More covers.",
			want: ParsedResponse{Insight: "Salmon is cheap.", Action: "Promote sushi.", Outcome: "More covers."},
		},
		{
			name: "continuation lines append and bullets are skipped",
			text: "Insight: Flour is up\nsharply this quarter.\n\n- a bullet\n* another\n• third\nAction: Bake smaller loaves.\nOutcome: Stable costs.",
			want: ParsedResponse{Insight: "Flour is up sharply this quarter.", Action: "Bake smaller loaves.", Outcome: "Stable costs."},
		},
		{
			name: "case insensitive markers",
			text: "INSIGHT: upper\naction: lower\nOuTcOmE: mixed",
			want: ParsedResponse{Insight: "upper", Action: "lower", Outcome: "mixed"},
		},
		{
			name: "insight wins when a line mentions several markers",
			text: "Insight and action: both named\nOutcome: done",
			want: ParsedResponse{Insight: "both named", Action: defaultAction, Outcome: "done"},
		},
		{
			name: "marker without colon is ordinary text",
			text: "Insight: first\nthe action we suggest is bold\nOutcome: later",
			want: ParsedResponse{Insight: "first the action we suggest is bold", Action: defaultAction, Outcome: "later"},
		},
		{
			name: "text before any marker is ignored",
			text: "Here is my analysis.\nAction: Do it.",
			want: ParsedResponse{Insight: defaultInsight, Action: "Do it.", Outcome: defaultOutcome},
		},
		{
			name: "empty response gets defaults",
			text: "",
			want: ParsedResponse{Insight: defaultInsight, Action: defaultAction, Outcome: defaultOutcome},
		},
		{
			name: "empty section after colon is filled by next lines",
			text: "Insight:\nPrices moved.\nAction:",
			want: ParsedResponse{Insight: "Prices moved.", Action: defaultAction, Outcome: defaultOutcome},
		},
		{
			name: "repeated marker restarts the section",
			text: "Action: first\nAction: second",
			want: ParsedResponse{Insight: defaultInsight, Action: "second", Outcome: defaultOutcome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResponse(tt.text))
		})
	}
}
