package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:               8080,
		JWTExpirationHours: 24,
		ArtifactTTL:        720 * time.Hour,
		SweepInterval:      time.Hour,
		InflightRetention:  2 * time.Hour,
		LogLevel:           "info",
		MaxUploadBytes:     10 << 20,
		HistoryLimit:       20,
		RateLimit: RateLimit{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			SubmitLimit:   10,
			SubmitWindow:  time.Hour,
			GradeLimit:    100,
			GradeWindow:   time.Hour,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ARTIFACT_TTL", "HISTORY_LIMIT", "MAX_UPLOAD_BYTES", "RATE_LIMIT_SUBMIT_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 720*time.Hour, cfg.ArtifactTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.InflightRetention)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, time.Duration(0), cfg.GenerationTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.SubmitLimit)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ARTIFACT_TTL", "48h")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("DATABASE_URL", "postgres://localhost/prep")
	t.Setenv("RATE_LIMIT_SUBMIT_LIMIT", "3")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1,10.0.0.2")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.ArtifactTTL)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "postgres://localhost/prep", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.RateLimit.SubmitLimit)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	content := "port: 9090\nsweep_interval: 15m\nrate_limit:\n  enabled: false\n"
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 20, cfg.HistoryLimit)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(New(), "/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "500")

	cfg, err := Load(New(), "")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "history_limit")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port"},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port"},
		{name: "ttl zero", mutate: func(c *Config) { c.ArtifactTTL = 0 }, wantErr: "artifact_ttl"},
		{name: "sweep zero", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: "sweep_interval"},
		{name: "negative retention", mutate: func(c *Config) { c.InflightRetention = -time.Second }, wantErr: "inflight_retention"},
		{name: "zero retention allowed", mutate: func(c *Config) { c.InflightRetention = 0 }},
		{name: "upload zero", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: "max_upload_bytes"},
		{name: "history zero", mutate: func(c *Config) { c.HistoryLimit = 0 }, wantErr: "history_limit"},
		{name: "history max", mutate: func(c *Config) { c.HistoryLimit = MaxHistoryLimit }},
		{name: "negative timeout", mutate: func(c *Config) { c.GenerationTimeout = -time.Second }, wantErr: "generation_timeout"},
		{name: "jwt hours", mutate: func(c *Config) { c.JWTExpirationHours = 0 }, wantErr: "jwt_expiration_hours"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
		{name: "negative limit", mutate: func(c *Config) { c.RateLimit.SubmitLimit = -1 }, wantErr: "rate limits"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.GradeWindow = 0 }, wantErr: "rate_limit.grade_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := validConfig()
	assert.Error(t, cfg.RequireAPIKey())

	cfg.GeminiAPIKey = "key"
	assert.NoError(t, cfg.RequireAPIKey())
}
