// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig controls schema migrations at startup.
type MigrationConfig interface {
	DatabaseConfig
	GetRunMigrations() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
}

// RedisConfig provides the Redis connection used by the cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDashboardRefreshInterval() time.Duration
}

// TextGenerationConfig provides settings for the summary generation service.
type TextGenerationConfig interface {
	GetTextGenAPIKey() string
	GetTextGenBaseURL() string
	GetTextGenModel() string
	GetTextGenMaxTokens() int64
	GetTextGenTimeout() time.Duration
	IsTextGenEnabled() bool
}

// IntelConfig provides the tunables of the lead intelligence engine.
type IntelConfig interface {
	GetHotLeadThreshold() int
	GetWarmLeadThreshold() int
	GetPhoneDefaultRegion() string
	GetLexiconPath() string
	GetSummaryCacheTTL() time.Duration
	GetDashboardCacheTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	RunMigrations            bool
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	RateLimitPerSecond       float64
	RateLimitBurst           int
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	DashboardRefreshInterval time.Duration
	TextGenAPIKey            string
	TextGenBaseURL           string
	TextGenModel             string
	TextGenMaxTokens         int64
	TextGenTimeout           time.Duration
	HotLeadThreshold         int
	WarmLeadThreshold        int
	PhoneDefaultRegion       string
	LexiconPath              string
	SummaryCacheTTL          time.Duration
	DashboardCacheTTL        time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetRunMigrations() bool { return c.RunMigrations }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerSecond() float64 { return c.RateLimitPerSecond }
func (c *Config) GetRateLimitBurst() int         { return c.RateLimitBurst }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) IsRedisEnabled() bool      { return c.RedisURL != "" }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string                  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                   { return c.AsynqConcurrency }
func (c *Config) GetDashboardRefreshInterval() time.Duration { return c.DashboardRefreshInterval }

// TextGenerationConfig implementation
func (c *Config) GetTextGenAPIKey() string         { return c.TextGenAPIKey }
func (c *Config) GetTextGenBaseURL() string        { return c.TextGenBaseURL }
func (c *Config) GetTextGenModel() string          { return c.TextGenModel }
func (c *Config) GetTextGenMaxTokens() int64       { return c.TextGenMaxTokens }
func (c *Config) GetTextGenTimeout() time.Duration { return c.TextGenTimeout }
func (c *Config) IsTextGenEnabled() bool           { return c.TextGenAPIKey != "" }

// IntelConfig implementation
func (c *Config) GetHotLeadThreshold() int            { return c.HotLeadThreshold }
func (c *Config) GetWarmLeadThreshold() int           { return c.WarmLeadThreshold }
func (c *Config) GetPhoneDefaultRegion() string       { return c.PhoneDefaultRegion }
func (c *Config) GetLexiconPath() string              { return c.LexiconPath }
func (c *Config) GetSummaryCacheTTL() time.Duration   { return c.SummaryCacheTTL }
func (c *Config) GetDashboardCacheTTL() time.Duration { return c.DashboardCacheTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		RunMigrations:            strings.EqualFold(getEnv("RUN_MIGRATIONS", "true"), "true"),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitPerSecond:       mustFloat(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateLimitBurst:           mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "intel"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		DashboardRefreshInterval: mustDuration(getEnv("DASHBOARD_REFRESH_INTERVAL", "5m")),
		TextGenAPIKey:            getEnv("TEXTGEN_API_KEY", ""),
		TextGenBaseURL:           getEnv("TEXTGEN_BASE_URL", ""),
		TextGenModel:             getEnv("TEXTGEN_MODEL", "claude-3-5-haiku-latest"),
		TextGenMaxTokens:         int64(mustInt(getEnv("TEXTGEN_MAX_TOKENS", "400"))),
		TextGenTimeout:           mustDuration(getEnv("TEXTGEN_TIMEOUT", "8s")),
		HotLeadThreshold:         mustInt(getEnv("HOT_LEAD_THRESHOLD", "70")),
		WarmLeadThreshold:        mustInt(getEnv("WARM_LEAD_THRESHOLD", "40")),
		PhoneDefaultRegion:       strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "IN")),
		LexiconPath:              getEnv("SCORING_LEXICON_PATH", ""),
		SummaryCacheTTL:          mustDuration(getEnv("SUMMARY_CACHE_TTL", "15m")),
		DashboardCacheTTL:        mustDuration(getEnv("DASHBOARD_CACHE_TTL", "10m")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.HotLeadThreshold < 0 || c.HotLeadThreshold > 100 {
		return fmt.Errorf("HOT_LEAD_THRESHOLD must be between 0 and 100")
	}
	if c.WarmLeadThreshold < 0 || c.WarmLeadThreshold > c.HotLeadThreshold {
		return fmt.Errorf("WARM_LEAD_THRESHOLD must be between 0 and HOT_LEAD_THRESHOLD")
	}
	if c.TextGenTimeout <= 0 {
		return fmt.Errorf("TEXTGEN_TIMEOUT must be a positive duration")
	}
	if c.DashboardRefreshInterval <= 0 {
		return fmt.Errorf("DASHBOARD_REFRESH_INTERVAL must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
