package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

const geminiDefaultModel = "gemini-1.5-flash"

// GeminiProvider implements AI provider for Google Gemini
type GeminiProvider struct {
	apiKey  string
	model   string
	enabled bool
}

// NewGeminiProvider creates new Gemini provider
func NewGeminiProvider(cfg *config.AIProviderConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}

	return &GeminiProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		enabled: cfg.Enabled && cfg.APIKey != "",
	}
}

func (g *GeminiProvider) GetName() string {
	return "gemini"
}

func (g *GeminiProvider) IsEnabled() bool {
	return g.enabled
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	startTime := time.Now()
	resp, err := client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("no text in response")
	}

	logger.Debug("Gemini response",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("length", len(text)),
	)

	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
