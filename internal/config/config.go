package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"goldloan/internal/core"
	applog "goldloan/internal/log"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Sessions
	SessionBackend         string
	SessionTTL             time.Duration
	SessionMaxEntries      int
	SessionCleanupSchedule string

	// Redis (session backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Receipt header
	BusinessName    string
	BusinessAddress string
	CurrencySymbol  string

	// Accrual policy
	RateThreshold   decimal.Decimal
	HighRatePercent decimal.Decimal
	LowRatePercent  decimal.Decimal
	CycleMonths     int
	CutoffDay       int

	// SMTP (receipt email, optional)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// AMQP (receipt email queue, optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	p := core.DefaultPolicy
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SessionBackend:         getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:             getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMaxEntries:      getEnvInt("SESSION_MAX_ENTRIES", 1000),
		SessionCleanupSchedule: getEnv("SESSION_CLEANUP_SCHEDULE", "@every 10m"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		BusinessName:    getEnv("BUSINESS_NAME", "PRAVEEN KUMAR FINANCE"),
		BusinessAddress: getEnv("BUSINESS_ADDRESS", "Gandhi Road, Vijayawada, Andhra Pradesh"),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "₹"),

		RateThreshold:   getEnvDecimal("RATE_THRESHOLD", p.RateThreshold),
		HighRatePercent: getEnvDecimal("RATE_HIGH_PERCENT", p.HighRatePercent),
		LowRatePercent:  getEnvDecimal("RATE_LOW_PERCENT", p.LowRatePercent),
		CycleMonths:     getEnvInt("CYCLE_MONTHS", p.CycleMonths),
		CutoffDay:       getEnvInt("CUTOFF_DAY", p.CutoffDay),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "goldloan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "receipt_mail"),
	}

	return cfg
}

// Policy returns the accrual policy described by the configuration.
func (c *Config) Policy() core.Policy {
	return core.Policy{
		RateThreshold:   c.RateThreshold,
		HighRatePercent: c.HighRatePercent,
		LowRatePercent:  c.LowRatePercent,
		CycleMonths:     c.CycleMonths,
		CutoffDay:       c.CutoffDay,
	}
}

// MailEnabled reports whether receipts can be emailed.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// MailQueued reports whether receipt emails go through the AMQP queue
// rather than straight to SMTP.
func (c *Config) MailQueued() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	switch c.SessionBackend {
	case "memory":
		if c.SessionMaxEntries < 1 {
			errors = append(errors, fmt.Sprintf("invalid session max entries %d: must be at least 1", c.SessionMaxEntries))
		}
	case "redis":
		if c.RedisAddr == "" {
			errors = append(errors, "Redis address cannot be empty when using redis session backend")
		}
		if c.RedisDB < 0 {
			errors = append(errors, fmt.Sprintf("invalid redis db %d: must not be negative", c.RedisDB))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of [memory redis]", c.SessionBackend))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at most 24 hours", c.SessionTTL))
	}

	if _, err := cron.ParseStandard(c.SessionCleanupSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid session cleanup schedule '%s': %v", c.SessionCleanupSchedule, err))
	}

	if strings.TrimSpace(c.BusinessName) == "" {
		errors = append(errors, "business name cannot be empty")
	}

	if err := c.Policy().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid accrual policy: %v", err))
	}

	if c.MailEnabled() {
		if c.SMTPFrom == "" {
			errors = append(errors, "SMTP_FROM is required when SMTP_HOST is set")
		}
		if _, err := strconv.Atoi(c.SMTPPort); err != nil {
			errors = append(errors, fmt.Sprintf("invalid SMTP port '%s': must be a number", c.SMTPPort))
		}
	}

	if c.MailQueued() {
		if !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
			errors = append(errors, "AMQP_URL must start with amqp:// or amqps://")
		}
		if c.AMQPExchange == "" || c.AMQPQueue == "" {
			errors = append(errors, "AMQP_EXCHANGE and AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
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

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
