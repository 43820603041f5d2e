// Package config provides configuration management for the odds-edge application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "ODDS_EDGE"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "odds-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.sports", []string{"basketball_nba"})
	v.SetDefault("odds_api.markets", []string{"h2h", "spreads"})
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.odds_format", "decimal")
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit", 1.0)
	v.SetDefault("odds_api.sample_data_path", "data/sample_odds.json")
	v.SetDefault("odds_api.use_sample", false)

	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.raw_dir", "data/raw_odds")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.freshness_window", "30m")
	v.SetDefault("cache.retention", "24h")

	v.SetDefault("pipeline.risk_aversion", 0.5)
	v.SetDefault("pipeline.ev_threshold", 0.02)
	v.SetDefault("pipeline.kelly_multiplier", 0.5)
	v.SetDefault("pipeline.bankroll_cap", 0.05)
	v.SetDefault("pipeline.bankroll", 1000.0)
	v.SetDefault("pipeline.bets_only", false)
	v.SetDefault("pipeline.fair_value", "own")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("api.port", 8000)
	v.SetDefault("api.allowed_origins", []string{"*"})

	v.SetDefault("schedule.refresh_cron", "*/30 * * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", "8080")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
