package recommend

import "strings"

const (
	defaultInsight = "Market trends indicate a need for strategic adjustments."
	defaultAction  = "Review your current menu and pricing strategy."
	defaultOutcome = "Improved operational efficiency and profitability."
)

type section int

const (
	sectionNone section = iota
	sectionInsight
	sectionAction
	sectionOutcome
)

// ParsedResponse is the insight/action/outcome triad extracted from model output
type ParsedResponse struct {
	Insight string
	Action  string
	Outcome string
}

// ParseResponse extracts the three sections from free-form model text.
// A line mentioning insight, action or outcome (checked in that order) together
// with a colon opens that section; following non-bullet lines extend it.
// Empty sections are replaced with fixed defaults.
func ParseResponse(text string) ParsedResponse {
	var parts [4]strings.Builder
	current := sectionNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if s := sectionMarker(line); s != sectionNone {
			current = s
			parts[s].Reset()
			parts[s].WriteString(afterColon(line))
			continue
		}

		if current != sectionNone && !isBullet(line) {
			if parts[current].Len() > 0 {
				parts[current].WriteByte(' ')
			}
			parts[current].WriteString(line)
		}
	}

	return ParsedResponse{
		Insight: orDefault(parts[sectionInsight].String(), defaultInsight),
		Action:  orDefault(parts[sectionAction].String(), defaultAction),
		Outcome: orDefault(parts[sectionOutcome].String(), defaultOutcome),
	}
}

func sectionMarker(line string) section {
	if !strings.Contains(line, ":") {
		return sectionNone
	}
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "insight"):
		return sectionInsight
	case strings.Contains(lower, "action"):
		return sectionAction
	case strings.Contains(lower, "outcome"):
		return sectionOutcome
	default:
		return sectionNone
	}
}

// afterColon returns the text after the first colon, minus leftover markdown emphasis
func afterColon(line string) string {
	_, rest, _ := strings.Cut(line, ":")
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest), "*_"))
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•")
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
