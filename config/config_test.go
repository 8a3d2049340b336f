package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "ENVIRONMENT", "LOG_LEVEL", "RUN_LOCK_DIR", "USE_STRICT_CONFIG",
		"SLACK_BOT_TOKEN", "SLACK_API_TOKEN", "SLACK_SIGNING_SECRET", "SLACK_ALERT_WEBHOOK_URL",
		"KUBIYA_API_URL", "KUBIYA_API_KEY", "KUBIYA_RUNNER",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "DB_DRIVER", "DB_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "*", cfg.CORSAllowedOrigins)
		assert.Equal(t, "dev", cfg.Environment)
		assert.False(t, cfg.UseStrictConfig)
		assert.Equal(t, "https://api.kubiya.ai", cfg.OrchestratorConfig.APIURL)
		assert.Equal(t, "gke-integration", cfg.OrchestratorConfig.Runner)
		assert.Equal(t, "sqlite", cfg.DatabaseConfig.Driver)
		assert.False(t, cfg.SlackConfig.IsConfigured())
		assert.False(t, cfg.OrchestratorConfig.IsConfigured())
		assert.True(t, cfg.DatabaseConfig.IsConfigured())
	})

	t.Run("Success_FromEnv", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SLACK_API_TOKEN", "xoxb-legacy")
		t.Setenv("KUBIYA_API_URL", "https://engine.example.com/")
		t.Setenv("KUBIYA_API_KEY", "key")
		t.Setenv("ANTHROPIC_API_KEY", "sk-test")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_URL", "postgres://localhost/incidents")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "xoxb-legacy", cfg.SlackConfig.BotToken)
		assert.Equal(t, "https://engine.example.com", cfg.OrchestratorConfig.APIURL)
		assert.True(t, cfg.OrchestratorConfig.IsConfigured())
		assert.True(t, cfg.AnthropicConfig.IsConfigured())
		assert.True(t, cfg.DatabaseConfig.IsConfigured())
	})

	t.Run("BotTokenTakesPrecedence", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SLACK_BOT_TOKEN", "xoxb-primary")
		t.Setenv("SLACK_API_TOKEN", "xoxb-legacy")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "xoxb-primary", cfg.SlackConfig.BotToken)
	})

	t.Run("StrictConfigFails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("USE_STRICT_CONFIG", "true")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slack integration is not fully configured")
	})

	t.Run("UnsupportedDatabaseDriver", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "mysql", URL: "x"}
		assert.False(t, cfg.IsConfigured())
	})
}
