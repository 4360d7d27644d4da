package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

const (
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeDefaultModel = "claude-3-5-sonnet-20241022"
)

// ClaudeProvider implements AI provider for Claude
type ClaudeProvider struct {
	apiKey  string
	model   string
	baseURL string
	enabled bool
	client  *http.Client
}

// NewClaudeProvider creates new Claude provider
func NewClaudeProvider(cfg *config.AIProviderConfig) *ClaudeProvider {
	model := cfg.Model
	if model == "" {
		model = claudeDefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = claudeAPIURL
	}

	return &ClaudeProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		enabled: cfg.Enabled && cfg.APIKey != "",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *ClaudeProvider) GetName() string {
	return "claude"
}

func (c *ClaudeProvider) IsEnabled() bool {
	return c.enabled
}

func (c *ClaudeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 1000,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var text bytes.Buffer
	for _, block := range result.Content {
		text.WriteString(block.Text)
	}

	logger.Debug("Claude response",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("length", text.Len()),
	)

	return text.String(), nil
}
