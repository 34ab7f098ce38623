// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/interview-prep/internal/logging"
	"github.com/spf13/viper"
)

// MaxHistoryLimit is the largest page size accepted for history listings.
const MaxHistoryLimit = 100

// Config holds every runtime setting. Values come from defaults, an optional config
// file, the environment and command-line flags, in increasing precedence.
type Config struct {
	Port               int           `mapstructure:"port"`
	DatabaseURL        string        `mapstructure:"database_url"`
	GeminiAPIKey       string        `mapstructure:"gemini_api_key"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTExpirationHours int           `mapstructure:"jwt_expiration_hours"`
	ArtifactTTL        time.Duration `mapstructure:"artifact_ttl"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	InflightRetention  time.Duration `mapstructure:"inflight_retention"`
	UseBrowser         bool          `mapstructure:"use_browser"`
	LogJSON            bool          `mapstructure:"log_json"`
	LogLevel           string        `mapstructure:"log_level"`
	MaxUploadBytes     int64         `mapstructure:"max_upload_bytes"`
	HistoryLimit       int           `mapstructure:"history_limit"`
	GenerationTimeout  time.Duration `mapstructure:"generation_timeout"`
	RateLimit          RateLimit     `mapstructure:"rate_limit"`
}

// RateLimit configures per-client request limits on the HTTP API.
type RateLimit struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	SubmitLimit     int           `mapstructure:"submit_limit"`
	SubmitWindow    time.Duration `mapstructure:"submit_window"`
	GradeLimit      int           `mapstructure:"grade_limit"`
	GradeWindow     time.Duration `mapstructure:"grade_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("database_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_expiration_hours", 24)
	v.SetDefault("artifact_ttl", 30*24*time.Hour)
	v.SetDefault("sweep_interval", time.Hour)
	v.SetDefault("inflight_retention", 2*time.Hour)
	v.SetDefault("use_browser", false)
	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("history_limit", 20)
	v.SetDefault("generation_timeout", time.Duration(0))

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.submit_limit", 10)
	v.SetDefault("rate_limit.submit_window", time.Hour)
	v.SetDefault("rate_limit.grade_limit", 100)
	v.SetDefault("rate_limit.grade_window", time.Hour)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})
}

// New returns a viper instance with defaults set and environment binding enabled.
// Nested keys map to environment variables with dots replaced, e.g. RATE_LIMIT_ENABLED.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the optional config file into v and decodes the merged settings.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required secrets are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.ArtifactTTL <= 0 {
		return fmt.Errorf("config error: 'artifact_ttl' must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config error: 'sweep_interval' must be positive")
	}
	if c.InflightRetention < 0 {
		return fmt.Errorf("config error: 'inflight_retention' must be non-negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("config error: 'history_limit' must be between 1 and %d, got %d", MaxHistoryLimit, c.HistoryLimit)
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("config error: 'generation_timeout' must be non-negative")
	}
	if c.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1 hour, got %d", c.JWTExpirationHours)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	rl := c.RateLimit
	if rl.DefaultLimit < 0 || rl.SubmitLimit < 0 || rl.GradeLimit < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}
	for name, window := range map[string]time.Duration{
		"rate_limit.default_window": rl.DefaultWindow,
		"rate_limit.submit_window":  rl.SubmitWindow,
		"rate_limit.grade_window":   rl.GradeWindow,
	} {
		if window <= 0 {
			return fmt.Errorf("config error: '%s' must be positive", name)
		}
	}
	return nil
}

// RequireAPIKey returns an error if no generation API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	return nil
}
