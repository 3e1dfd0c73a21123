// Package config loads service configuration from the environment.
//
// Consumers depend on the narrow interfaces below rather than the full
// Config struct, so each module states exactly which settings it reads.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig is what the database pool needs.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig is what the auth middleware needs.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig is what the router needs.
type HTTPConfig interface {
	GetPort() string
	GetCORSAllowedOrigins() []string
	GetEnv() string
}

// SchedulerConfig is what the asynq client, worker and dispatcher need.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetOutboxPollInterval() time.Duration
	GetOutboxBatchSize() int
}

// SMTPConfig is what the email sender needs.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromAddress() string
	GetSMTPFromName() string
}

// PhoneConfig is what phone normalization needs.
type PhoneConfig interface {
	GetDefaultPhoneRegion() string
}

// Config holds every setting. It implements all the interfaces above.
type Config struct {
	Env  string
	Port string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowedOrigins []string

	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFromAddress string
	SMTPFromName    string

	DefaultPhoneRegion string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment, consulting .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		RedisURL:           os.Getenv("REDIS_URL"),
		RedisTLSInsecure:   getBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE_NAME", "default"),
		AsynqConcurrency:   getInt("ASYNQ_CONCURRENCY", 10),
		OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    getInt("OUTBOX_BATCH_SIZE", 50),

		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getInt("SMTP_PORT", 587),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFromAddress: os.Getenv("SMTP_FROM_ADDRESS"),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "Leads Manager"),

		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "AE"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		problems = append(problems, "JWT_ACCESS_SECRET is required")
	}
	if c.Env != "development" && len(c.JWTAccessSecret) > 0 && len(c.JWTAccessSecret) < 32 {
		problems = append(problems, "JWT_ACCESS_SECRET must be at least 32 characters outside development")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) GetDatabaseURL() string           { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetPort() string                  { return c.Port }
func (c *Config) GetCORSAllowedOrigins() []string  { return c.CORSAllowedOrigins }
func (c *Config) GetEnv() string                   { return c.Env }
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string        { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int         { return c.AsynqConcurrency }
func (c *Config) GetOutboxPollInterval() time.Duration { return c.OutboxPollInterval }
func (c *Config) GetOutboxBatchSize() int          { return c.OutboxBatchSize }
func (c *Config) GetSMTPHost() string              { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                 { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string          { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string          { return c.SMTPPassword }
func (c *Config) GetSMTPFromAddress() string       { return c.SMTPFromAddress }
func (c *Config) GetSMTPFromName() string          { return c.SMTPFromName }
func (c *Config) GetDefaultPhoneRegion() string    { return c.DefaultPhoneRegion }

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

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
