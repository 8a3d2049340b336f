package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"incidentflow/core/log"
)

type SlackConfig struct {
	BotToken        string
	SigningSecret   string
	AlertWebhookURL string
}

// IsConfigured returns true if the bot token needed for chat.postMessage and file uploads is present
func (c SlackConfig) IsConfigured() bool {
	return c.BotToken != ""
	// Note: SigningSecret is only needed by `serve`, AlertWebhookURL is optional
}

type OrchestratorConfig struct {
	APIURL string
	APIKey string
	Runner string
}

// IsConfigured returns true if workflows can be submitted to the remote engine
func (c OrchestratorConfig) IsConfigured() bool {
	return c.APIURL != "" &&
		c.APIKey != "" &&
		c.Runner != ""
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// IsConfigured returns true if agent and llm_completion steps can run locally
func (c AnthropicConfig) IsConfigured() bool {
	return c.APIKey != "" && c.Model != ""
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

// IsConfigured returns true if the run ledger has a supported driver and a connection string
func (c DatabaseConfig) IsConfigured() bool {
	return (c.Driver == "sqlite" || c.Driver == "postgres") && c.URL != ""
}

type AppConfig struct {
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	LogLevel           string
	RunLockDir         string
	UseStrictConfig    bool // If true, error when any integration is not fully configured

	SlackConfig        SlackConfig
	OrchestratorConfig OrchestratorConfig
	AnthropicConfig    AnthropicConfig
	DatabaseConfig     DatabaseConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("⚠️ Could not load .env file, continuing with system env vars")
	}

	config := &AppConfig{
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		RunLockDir:         os.Getenv("RUN_LOCK_DIR"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "false") == "true",

		SlackConfig: SlackConfig{
			BotToken:        getEnvFirst("SLACK_BOT_TOKEN", "SLACK_API_TOKEN"),
			SigningSecret:   os.Getenv("SLACK_SIGNING_SECRET"),
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},

		OrchestratorConfig: OrchestratorConfig{
			APIURL: strings.TrimRight(getEnvWithDefault("KUBIYA_API_URL", "https://api.kubiya.ai"), "/"),
			APIKey: os.Getenv("KUBIYA_API_KEY"),
			Runner: getEnvWithDefault("KUBIYA_RUNNER", "gke-integration"),
		},

		AnthropicConfig: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnvWithDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},

		DatabaseConfig: DatabaseConfig{
			Driver: getEnvWithDefault("DB_DRIVER", "sqlite"),
			URL:    getEnvWithDefault("DB_URL", "file:incidentflow.db"),
		},
	}

	integrations := []struct {
		name       string
		configured bool
		disabled   string
	}{
		{"Slack", config.SlackConfig.IsConfigured(), "Slack notifications and uploads will be disabled"},
		{"Orchestrator", config.OrchestratorConfig.IsConfigured(), "remote workflow submission will be disabled"},
		{"Anthropic", config.AnthropicConfig.IsConfigured(), "agent and llm steps will fail in local runs"},
		{"Database", config.DatabaseConfig.IsConfigured(), "run history will not be recorded"},
	}

	for _, integration := range integrations {
		if integration.configured {
			log.Debug(fmt.Sprintf("✅ %s integration configured", integration.name))
			continue
		}

		log.Debug(fmt.Sprintf("⚠️ %s integration not configured - %s", integration.name, integration.disabled))
		if config.UseStrictConfig {
			return nil, fmt.Errorf("%s integration is not fully configured (USE_STRICT_CONFIG=true)", strings.ToLower(integration.name))
		}
	}

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFirst returns the first non-empty value among keys
func getEnvFirst(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
