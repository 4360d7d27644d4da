package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

const openaiDefaultModel = openai.GPT4oMini

// OpenAIProvider implements AI provider for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewOpenAIProvider creates new OpenAI provider
func NewOpenAIProvider(cfg *config.AIProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openaiDefaultModel
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		enabled: cfg.Enabled && cfg.APIKey != "",
	}
}

func (o *OpenAIProvider) GetName() string {
	return "openai"
}

func (o *OpenAIProvider) IsEnabled() bool {
	return o.enabled
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content

	logger.Debug("OpenAI response",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)

	return content, nil
}
