package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/ai"
	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
	"github.com/selivandex/menu-analytics/pkg/templates"
)

const (
	promptTemplate = "recommendation.tmpl"

	tagUrgent      = "URGENT"
	tagOpportunity = "OPPORTUNITY"
	tagTrend       = "TREND"
)

// PromptTrend is one trend line of the recommendation prompt
type PromptTrend struct {
	Tag  string
	Text string
}

// lastUsedReporter is implemented by providers that delegate to others, such as ai.Chain
type lastUsedReporter interface {
	LastUsed() string
}

// Composer turns trend alerts into a business recommendation,
// using a language model when one is available and rules otherwise
type Composer struct {
	provider ai.Provider
	renderer templates.Renderer
	timeout  time.Duration
}

// NewComposer creates a composer. provider may be nil.
func NewComposer(provider ai.Provider, renderer templates.Renderer, timeout time.Duration) *Composer {
	return &Composer{
		provider: provider,
		renderer: renderer,
		timeout:  timeout,
	}
}

// Compose never fails: any language model problem degrades to the rule-based recommendation
func (c *Composer) Compose(ctx context.Context, trends []models.TrendAlert) models.Recommendation {
	if trends == nil {
		trends = []models.TrendAlert{}
	}

	if c.provider == nil || !c.provider.IsEnabled() {
		logger.Info("no language model available, using rule-based recommendation",
			zap.Int("trends", len(trends)),
		)
		return ruleRecommendation(trends)
	}

	text, providerName, err := c.generate(ctx, trends)
	if err != nil {
		logger.Warn("language model recommendation failed, falling back to rules",
			zap.String("provider", c.provider.GetName()),
			zap.Error(err),
		)
		return ruleRecommendation(trends)
	}

	parsed := ParseResponse(text)

	logger.Info("recommendation generated by language model",
		zap.String("provider", providerName),
		zap.Int("trends", len(trends)),
	)

	return models.Recommendation{
		Insight:      parsed.Insight,
		Action:       parsed.Action,
		Outcome:      parsed.Outcome,
		SourceTrends: trends,
		AIGenerated:  true,
		Provider:     providerName,
	}
}

func (c *Composer) generate(ctx context.Context, trends []models.TrendAlert) (string, string, error) {
	prompt, err := c.BuildPrompt(trends)
	if err != nil {
		return "", "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return "", "", err
	}

	name := c.provider.GetName()
	if r, ok := c.provider.(lastUsedReporter); ok && r.LastUsed() != "" {
		name = r.LastUsed()
	}

	logger.Debug("language model responded",
		zap.String("provider", name),
		zap.Duration("latency", time.Since(start)),
	)

	return text, name, nil
}

// BuildPrompt renders the recommendation prompt for the given trends
func (c *Composer) BuildPrompt(trends []models.TrendAlert) (string, error) {
	lines := make([]PromptTrend, 0, len(trends))
	for _, t := range trends {
		lines = append(lines, PromptTrend{Tag: promptTag(t.Severity), Text: t.Trend})
	}

	prompt, err := c.renderer.ExecuteTemplate(promptTemplate, map[string]any{"Trends": lines})
	if err != nil {
		return "", fmt.Errorf("failed to build recommendation prompt: %w", err)
	}
	return prompt, nil
}

func promptTag(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return tagUrgent
	case models.SeverityOpportunity:
		return tagOpportunity
	default:
		return tagTrend
	}
}

func ruleRecommendation(trends []models.TrendAlert) models.Recommendation {
	r := RuleBased(trends)
	return models.Recommendation{
		Insight:      r.Insight,
		Action:       r.Action,
		Outcome:      r.Outcome,
		SourceTrends: trends,
		AIGenerated:  false,
	}
}
