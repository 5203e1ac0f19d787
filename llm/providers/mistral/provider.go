package mistral

import (
	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm/providers"
	"github.com/agentduel/agentduel/llm/providers/openai"
)

// Provider implements llm.Provider for Mistral AI. Mistral speaks the
// OpenAI-compatible chat completions format, so the provider wraps the
// openai implementation with its own endpoint and name.
type Provider struct {
	*openai.Provider
}

// New creates a Mistral provider.
func New(cfg providers.BaseConfig, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai"
	}
	return &Provider{
		Provider: openai.NewCompatible("mistral", cfg, logger),
	}
}
