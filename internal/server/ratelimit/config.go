package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/interview-prep/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds the limiter configuration from the application settings.
func NewConfig(settings config.RateLimit) *Config {
	if !settings.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    settings.DefaultLimit,
		DefaultWindow:   settings.DefaultWindow,
		CleanupInterval: settings.CleanupInterval,
		Whitelist:       parseIPList(settings.Whitelist),
		Blacklist:       parseIPList(settings.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(settings),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
func DefaultEndpointConfigs(settings config.RateLimit) []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: each submission runs the whole generation pipeline
		{Path: "/api/interview-prep", Method: "POST", Limit: settings.SubmitLimit, Window: settings.SubmitWindow, Burst: min(settings.SubmitLimit, 2)},

		// Tier 2: one generation call per request
		{Path: "/api/grade", Method: "POST", Limit: settings.GradeLimit, Window: settings.GradeWindow, Burst: min(settings.GradeLimit, 10)},

		// Tier 3: reads and response saves use the default limit
		// Tier 4: health check is unlimited, handled in the matcher
	}
}

// parseIPList turns a list of IP addresses into a lookup set.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
