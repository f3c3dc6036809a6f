package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDefaultTimeoutValues verifies that timeout configurations have sensible defaults
func TestDefaultTimeoutValues(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.DBInitTimeout, "DB init timeout should be 30s")
	assert.Equal(t, 5*time.Second, cfg.RedisConnTimeout, "Redis connection timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.CacheInitTimeout, "Cache init timeout should be 5s")
	assert.Equal(t, 15*time.Second, cfg.OAuthTimeout, "OAuth timeout should be 15s")
	assert.Equal(
		t,
		5*time.Second,
		cfg.ServerShutdownTimeout,
		"Server shutdown timeout should be 5s",
	)
}

// TestTimeoutConfigurationFromEnv verifies that timeout values can be configured via environment
func TestTimeoutConfigurationFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		getter   func(*Config) time.Duration
		expected time.Duration
	}{
		{
			name:     "DB_INIT_TIMEOUT",
			envKey:   "DB_INIT_TIMEOUT",
			envValue: "60s",
			getter:   func(c *Config) time.Duration { return c.DBInitTimeout },
			expected: 60 * time.Second,
		},
		{
			name:     "REDIS_CONN_TIMEOUT",
			envKey:   "REDIS_CONN_TIMEOUT",
			envValue: "10s",
			getter:   func(c *Config) time.Duration { return c.RedisConnTimeout },
			expected: 10 * time.Second,
		},
		{
			name:     "SESSION_EXPIRATION",
			envKey:   "SESSION_EXPIRATION",
			envValue: "1h",
			getter:   func(c *Config) time.Duration { return c.SessionExpiration },
			expected: time.Hour,
		},
		{
			name:     "CRON_STALE_AFTER",
			envKey:   "CRON_STALE_AFTER",
			envValue: "48h",
			getter:   func(c *Config) time.Duration { return c.CronStaleAfter },
			expected: 48 * time.Hour,
		},
		{
			name:     "SERVER_SHUTDOWN_TIMEOUT",
			envKey:   "SERVER_SHUTDOWN_TIMEOUT",
			envValue: "30s",
			getter:   func(c *Config) time.Duration { return c.ServerShutdownTimeout },
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg := Load()

			actual := tt.getter(cfg)
			assert.Equal(t, tt.expected, actual, "%s should be configurable via env", tt.envKey)
		})
	}
}

// TestTimeoutConfigurationInvalidValues verifies that invalid timeout values fall back to defaults
func TestTimeoutConfigurationInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		getter   func(*Config) time.Duration
		expected time.Duration
	}{
		{
			name:     "DB_INIT_TIMEOUT invalid",
			envKey:   "DB_INIT_TIMEOUT",
			envValue: "invalid",
			getter:   func(c *Config) time.Duration { return c.DBInitTimeout },
			expected: 30 * time.Second,
		},
		{
			name:     "SESSION_EXPIRATION no unit",
			envKey:   "SESSION_EXPIRATION",
			envValue: "6",
			getter:   func(c *Config) time.Duration { return c.SessionExpiration },
			expected: 6 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)
			cfg := Load()
			assert.Equal(t, tt.expected, tt.getter(cfg))
		})
	}
}
