// Package factory creates llm.Provider instances by name. It imports the
// provider sub-packages and maps configured names to their constructors,
// keeping the llm package free of provider imports.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/config"
	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/llm/providers"
	"github.com/agentduel/agentduel/llm/providers/gemini"
	"github.com/agentduel/agentduel/llm/providers/mistral"
	"github.com/agentduel/agentduel/llm/providers/openai"
)

// New creates the provider named by cfg.Provider.
//
// Supported names: openai, mistral, gemini.
func New(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := providers.BaseConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	switch cfg.Provider {
	case "openai":
		return openai.New(base, logger), nil
	case "mistral":
		return mistral.New(base, logger), nil
	case "gemini":
		return gemini.New(base, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
