// =============================================================================
// agentduel default configuration
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: DefaultServerConfig(),
		LLM:    DefaultLLMConfig(),
		Store:  DefaultStoreConfig(),
		Log:    DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:           8000,
		MetricsPort:        9091,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     200,
	}
}

// DefaultLLMConfig returns the default model collaborator configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		Timeout:  60 * time.Second,
	}
}

// DefaultStoreConfig returns the default snapshot store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Enabled: false,
		Path:    "agentduel.db",
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}
