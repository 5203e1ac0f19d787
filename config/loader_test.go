package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9000
  read_timeout: 10s
llm:
  provider: mistral
  model: mistral-large-latest
store:
  enabled: true
  path: /tmp/duel.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mistral", cfg.LLM.Provider)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.HTTPPort)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AGENTDUEL_SERVER_HTTP_PORT", "8081")
	t.Setenv("AGENTDUEL_SERVER_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("AGENTDUEL_SERVER_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AGENTDUEL_SERVER_RATE_LIMIT_RPS", "50.5")
	t.Setenv("AGENTDUEL_LLM_PROVIDER", "gemini")
	t.Setenv("AGENTDUEL_LLM_API_KEY", "test-key")
	t.Setenv("AGENTDUEL_STORE_ENABLED", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 50.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.True(t, cfg.Store.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: "invalid http_port",
		},
		{
			name:    "metrics port collision",
			mutate:  func(c *Config) { c.Server.MetricsPort = c.Server.HTTPPort },
			wantErr: "metrics_port",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "acme" },
			wantErr: "unknown llm provider",
		},
		{
			name: "store enabled without path",
			mutate: func(c *Config) {
				c.Store.Enabled = true
				c.Store.Path = ""
			},
			wantErr: "store.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
