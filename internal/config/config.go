// Package config provides configuration management for the odds-edge application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Health   HealthConfig   `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// OddsAPIConfig represents The Odds API client configuration
type OddsAPIConfig struct {
	BaseURL        string   `mapstructure:"base_url" validate:"required,url"`
	APIKey         string   `mapstructure:"api_key"`
	Sports         []string `mapstructure:"sports" validate:"required,min=1,dive,required"`
	Markets        []string `mapstructure:"markets" validate:"required,min=1,dive,oddsmarket"`
	Regions        string   `mapstructure:"regions" validate:"required"`
	OddsFormat     string   `mapstructure:"odds_format" validate:"required,oneof=decimal american"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int      `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64  `mapstructure:"rate_limit" validate:"required,gt=0"`
	SampleDataPath string   `mapstructure:"sample_data_path"`
	UseSample      bool     `mapstructure:"use_sample"`
}

// CacheConfig represents raw snapshot cache configuration
type CacheConfig struct {
	Backend         string        `mapstructure:"backend" validate:"required,cachebackend"`
	Dir             string        `mapstructure:"dir"`
	RawDir          string        `mapstructure:"raw_dir"`
	RedisURL        string        `mapstructure:"redis_url"`
	FreshnessWindow time.Duration `mapstructure:"freshness_window" validate:"required,gt=0"`
	Retention       time.Duration `mapstructure:"retention" validate:"required,gt=0"`
}

// PipelineConfig represents the pricing and decision parameters
type PipelineConfig struct {
	RiskAversion    float64 `mapstructure:"risk_aversion" validate:"gte=0"`
	EVThreshold     float64 `mapstructure:"ev_threshold"`
	KellyMultiplier float64 `mapstructure:"kelly_multiplier" validate:"gt=0,lte=1"`
	BankrollCap     float64 `mapstructure:"bankroll_cap" validate:"gt=0,lte=1"`
	Bankroll        float64 `mapstructure:"bankroll" validate:"gt=0"`
	BetsOnly        bool    `mapstructure:"bets_only"`
	FairValue       string  `mapstructure:"fair_value" validate:"required,oneof=own consensus"`
}

// DatabaseConfig represents the line-history database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// APIConfig represents the JSON presentation API configuration
type APIConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScheduleConfig represents refresh scheduling
type ScheduleConfig struct {
	RefreshCron string `mapstructure:"refresh_cron" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
// Metrics are served from the health server
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestTimeout returns the odds API request timeout
func (c *OddsAPIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
