// Package llm abstracts the reasoning backend used by the generation steps.
package llm

import (
	"context"
	"fmt"

	"github.com/paolopast/LangNerd/config"
)

// Provider is the contract every reasoning backend must satisfy.
type Provider interface {
	// Generate sends a system+user prompt pair and returns the raw
	// completion text.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewProvider creates a reasoning backend from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", cfg.Provider)
	}
}
