package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

// ErrNoProvider is returned when no enabled provider produced a response
var ErrNoProvider = errors.New("no enabled AI provider")

// Provider represents a text-generation model
type Provider interface {
	// Generate sends a single prompt and returns the raw model text
	Generate(ctx context.Context, prompt string) (string, error)

	// GetName returns provider name
	GetName() string

	// IsEnabled returns whether provider is enabled
	IsEnabled() bool
}

// Chain tries providers in order until one succeeds
type Chain struct {
	providers []Provider
	lastUsed  string
}

// NewChain creates a provider chain, keeping only enabled providers
func NewChain(providers ...Provider) *Chain {
	enabled := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil && p.IsEnabled() {
			enabled = append(enabled, p)
		}
	}
	return &Chain{providers: enabled}
}

func (c *Chain) GetName() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.GetName())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) IsEnabled() bool {
	return len(c.providers) > 0
}

// LastUsed returns the name of the provider that answered the last successful call
func (c *Chain) LastUsed() string {
	return c.lastUsed
}

// Generate queries providers sequentially and returns the first successful response
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		text, err := p.Generate(ctx, prompt)
		if err != nil {
			logger.Warn("AI provider failed", zap.String("provider", p.GetName()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.GetName(), err))
			continue
		}

		c.lastUsed = p.GetName()
		return text, nil
	}

	return "", fmt.Errorf("all AI providers failed: %w", errors.Join(errs...))
}

// NewChainFromConfig builds a chain of the enabled providers in configured order
func NewChainFromConfig(cfg *config.AIConfig) *Chain {
	var providers []Provider
	for _, name := range cfg.GetEnabledAIProviders() {
		providerCfg, _ := cfg.Provider(name)
		switch name {
		case "gemini":
			providers = append(providers, NewGeminiProvider(providerCfg))
		case "openai":
			providers = append(providers, NewOpenAIProvider(providerCfg))
		case "claude":
			providers = append(providers, NewClaudeProvider(providerCfg))
		}
	}
	return NewChain(providers...)
}
