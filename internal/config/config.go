package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Metrics cache type constants
const (
	MetricsCacheTypeMemory = "memory"
	MetricsCacheTypeRedis  = "redis"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// IntegrationInstagram is the name of the built-in Instagram integration.
const IntegrationInstagram = "instagram"

// IntegrationConfig holds the per-integration OAuth credentials and status.
type IntegrationConfig struct {
	Name              string
	BeansPublic       string // Beans OAuth client id issued for this integration
	BeansSecret       string
	ThirdPartyPublic  string // Third-party app id
	ThirdPartySecret  string
	IsStatusAvailable bool // When false, connected pages redirect to maintenance
}

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"

	// Session settings
	SessionSecret     string        // Cookie store secret (state nonce, flash messages)
	SessionMaxAge     int           // seconds
	CryptoSecret      string        // Signs the merchant session credential
	SessionExpiration time.Duration // Session credential lifetime (default: 6h)

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Beans (primary platform)
	BeansOAuthURL string // Authorize URL, e.g. https://connect.trybeans.com/oauth/authorize/
	BeansAPIURL   string

	// Integrations
	TrellisList  []string
	Integrations map[string]IntegrationConfig

	// Instagram endpoints
	InstagramAuthorizeURL string
	InstagramAPIURL       string
	InstagramGraphURL     string
	InstagramScopes       []string

	// OAuth HTTP Client Settings
	OAuthTimeout            time.Duration
	OAuthInsecureSkipVerify bool
	OAuthMaxRetries         int
	OAuthRetryDelay         time.Duration
	OAuthMaxRetryDelay      time.Duration

	// Redis
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	RateLimitCleanupInterval time.Duration
	LoginRateLimit           int // requests per minute
	CallbackRateLimit        int
	WebhookRateLimit         int

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string // "memory" or "redis"
	CacheInitTimeout           time.Duration

	// Background workers
	WorkerEnabled     bool
	WorkerConcurrency int
	CronBatchSize     int
	CronStaleAfter    time.Duration // Cursor age after which a record is OLD (default: 7 days)
	CronScheduleNew   string        // asynq cron spec for the NEW strategy
	CronScheduleOld   string        // asynq cron spec for the OLD strategy
	TasksToken        string        // Bearer token for /tasks endpoints

	// Signals
	SignalEnabled bool
	KafkaBrokers  []string
	SignalTopic   string
	SignalGroupID string

	// Server shutdown
	ServerShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "trellis.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	trellisList := getEnvSlice("TRELLIS_LIST", []string{IntegrationInstagram})
	integrations := make(map[string]IntegrationConfig, len(trellisList))
	for _, name := range trellisList {
		integrations[name] = loadIntegration(name)
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction: getEnv("ENVIRONMENT", "development") == "production",

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", LogFormatJSON),

		SessionSecret:     getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge:     getEnvInt("SESSION_MAX_AGE", 3600),
		CryptoSecret:      getEnv("CRYPTO_SECRET", "crypto-secret-change-in-production"),
		SessionExpiration: getEnvDuration("SESSION_EXPIRATION", 6*time.Hour),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		BeansOAuthURL: getEnv("BEANS_OAUTH_URL", "https://connect.trybeans.com/oauth/authorize/"),
		BeansAPIURL:   getEnv("BEANS_API_URL", "https://api.trybeans.com/v3"),

		TrellisList:  trellisList,
		Integrations: integrations,

		InstagramAuthorizeURL: getEnv(
			"INSTAGRAM_AUTHORIZE_URL",
			"https://www.instagram.com/oauth/authorize/",
		),
		InstagramAPIURL:   getEnv("INSTAGRAM_API_URL", "https://api.instagram.com"),
		InstagramGraphURL: getEnv("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		InstagramScopes: getEnvSlice("INSTAGRAM_SCOPES", []string{
			"business_basic",
			"business_content_publish",
			"business_manage_comments",
			"business_manage_messages",
		}),

		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),
		OAuthMaxRetries:         getEnvInt("OAUTH_MAX_RETRIES", 3),
		OAuthRetryDelay:         getEnvDuration("OAUTH_RETRY_DELAY", 1*time.Second),
		OAuthMaxRetryDelay:      getEnvDuration("OAUTH_MAX_RETRY_DELAY", 10*time.Second),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisConnTimeout: getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 10),
		CallbackRateLimit:        getEnvInt("CALLBACK_RATE_LIMIT", 20),
		WebhookRateLimit:         getEnvInt("WEBHOOK_RATE_LIMIT", 60),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", MetricsCacheTypeMemory),
		CacheInitTimeout:           getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),

		WorkerEnabled:     getEnvBool("WORKER_ENABLED", false),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		CronBatchSize:     getEnvInt("CRON_BATCH_SIZE", 100),
		CronStaleAfter:    getEnvDuration("CRON_STALE_AFTER", 7*24*time.Hour),
		CronScheduleNew:   getEnv("CRON_SCHEDULE_NEW", "*/5 * * * *"),
		CronScheduleOld:   getEnv("CRON_SCHEDULE_OLD", "@hourly"),
		TasksToken:        getEnv("TASKS_TOKEN", ""),

		SignalEnabled: getEnvBool("SIGNAL_ENABLED", false),
		KafkaBrokers:  getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		SignalTopic:   getEnv("SIGNAL_TOPIC", "stem.liana.signals"),
		SignalGroupID: getEnv("SIGNAL_GROUP_ID", "trellis"),

		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// loadIntegration reads the {NAME}_* variables for one integration.
func loadIntegration(name string) IntegrationConfig {
	prefix := strings.ToUpper(name) + "_"
	return IntegrationConfig{
		Name:              name,
		BeansPublic:       getEnv(prefix+"BEANS_PUBLIC", ""),
		BeansSecret:       getEnv(prefix+"BEANS_SECRET", ""),
		ThirdPartyPublic:  getEnv(prefix+"THIRD_PARTY_PUBLIC", ""),
		ThirdPartySecret:  getEnv(prefix+"THIRD_PARTY_SECRET", ""),
		IsStatusAvailable: getEnvBool(prefix+"IS_STATUS_AVAILABLE", true),
	}
}

// Integration returns the configuration of a registered integration.
func (c *Config) Integration(name string) (IntegrationConfig, bool) {
	ic, ok := c.Integrations[name]
	return ic, ok
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	switch c.MetricsCacheType {
	case MetricsCacheTypeMemory:
	case MetricsCacheTypeRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("METRICS_CACHE_TYPE=%q requires REDIS_ADDR", c.MetricsCacheType)
		}
	default:
		return fmt.Errorf("invalid METRICS_CACHE_TYPE value: %q", c.MetricsCacheType)
	}

	if c.EnableRateLimit && c.RateLimitStore == RateLimitStoreRedis && c.RedisAddr == "" {
		return errors.New("RATE_LIMIT_STORE=\"redis\" requires REDIS_ADDR")
	}

	if c.WorkerEnabled && c.RedisAddr == "" {
		return errors.New("WORKER_ENABLED=true requires REDIS_ADDR")
	}

	if c.SignalEnabled {
		if !c.WorkerEnabled {
			return errors.New("SIGNAL_ENABLED=true requires WORKER_ENABLED=true")
		}
		if len(c.KafkaBrokers) == 0 {
			return errors.New("SIGNAL_ENABLED=true requires KAFKA_BROKERS")
		}
	}

	if len(c.TrellisList) == 0 {
		return errors.New("TRELLIS_LIST must name at least one integration")
	}
	for _, name := range c.TrellisList {
		if name != IntegrationInstagram {
			return fmt.Errorf("unsupported integration in TRELLIS_LIST: %q", name)
		}
	}

	if c.SessionExpiration <= 0 {
		return fmt.Errorf("SESSION_EXPIRATION must be positive, got %s", c.SessionExpiration)
	}

	if c.CronBatchSize <= 0 {
		return fmt.Errorf("CRON_BATCH_SIZE must be positive, got %d", c.CronBatchSize)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim spaces
		parts := []string{}
		for _, part := range splitAndTrim(value, ",") {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
