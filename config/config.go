// Package config loads service configuration from environment variables,
// optionally seeded from a .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Model providers selectable via MODEL_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for the appwright service.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Model provider configuration
	Provider  string `envconfig:"MODEL_PROVIDER" default:"openai"` // openai or anthropic
	ModelName string `envconfig:"MODEL_NAME" default:""`           // provider default when empty

	// Build loop configuration
	MaxIterations     int    `envconfig:"MAX_ITERATIONS" default:"50"`
	IterationDelayMs  int    `envconfig:"ITERATION_DELAY_MS" default:"2000"`
	ProviderBackoffMs int    `envconfig:"PROVIDER_BACKOFF_MS" default:"5000"`
	BaseDir           string `envconfig:"BASE_DIR" default:"app"`
	HistoryFile       string `envconfig:"HISTORY_FILE" default:"appwright_build_log.json"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration, first from a .env file if one exists, then from
// the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration directly from environment variables,
// skipping the .env lookup (useful for containerized deployments).
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Provider != ProviderOpenAI && cfg.Provider != ProviderAnthropic {
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.Provider)
	}
	if cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("MAX_ITERATIONS must be at least 1, got %d", cfg.MaxIterations)
	}
	return &cfg, nil
}

// IterationDelay returns the inter-iteration pause as a duration.
func (c *Config) IterationDelay() time.Duration {
	return time.Duration(c.IterationDelayMs) * time.Millisecond
}

// ProviderBackoff returns the failed-completion pause as a duration.
func (c *Config) ProviderBackoff() time.Duration {
	return time.Duration(c.ProviderBackoffMs) * time.Millisecond
}
