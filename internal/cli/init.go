// Package cli provides common initialization shared by cmd/goldloan,
// cmd/goldloan-mailer and cmd/accrue.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"goldloan/internal/amqp"
	"goldloan/internal/cache"
	"goldloan/internal/config"
	applog "goldloan/internal/log"
	"goldloan/internal/mail"
	"goldloan/internal/session"
	"goldloan/internal/worker"
)

const amqpDialAttempts = 5

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. cfg must already be validated.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	level, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// InitSessionStore opens the configured session backend. Memory stores are
// registered with manager so expired sessions are swept on schedule. The
// returned close function is always safe to call.
func InitSessionStore(ctx context.Context, cfg *config.Config, manager *cache.Manager, logger *applog.Logger) (session.Store, func(), error) {
	logger = logger.WithComponent(applog.ComponentSession)

	switch cfg.SessionBackend {
	case "redis":
		store, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect redis session store at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("Initialized redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.SessionTTL)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Closing redis session store failed", applog.FieldError, err)
			}
		}, nil

	case "memory":
		store := session.NewMemoryStore(cfg.SessionMaxEntries, cfg.SessionTTL)
		if manager != nil {
			manager.Register(store)
		}
		logger.Info("Initialized memory session store", "max_entries", cfg.SessionMaxEntries, "ttl", cfg.SessionTTL)
		return store, func() {}, nil
	}

	return nil, func() {}, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}

// NewSMTPSender builds the SMTP receipt sender from cfg.
func NewSMTPSender(cfg *config.Config, logger *applog.Logger) *mail.Sender {
	return mail.NewSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
}

// InitReceiptMailer picks how the web server delivers receipt emails: via
// the AMQP queue when AMQP_URL is set, straight over SMTP when SMTP_HOST is
// set, or not at all (nil sender). If the broker cannot be reached the
// server falls back to SMTP rather than refusing to start.
func InitReceiptMailer(ctx context.Context, cfg *config.Config, logger *applog.Logger) (worker.ReceiptSender, func(), error) {
	if cfg.MailQueued() {
		client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger, amqpDialAttempts)
		if err == nil {
			logger.Info("Receipt email queued via AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			return worker.NewQueuedMailer(client, logger), func() {
				if err := client.Close(); err != nil {
					logger.Warn("Closing AMQP client failed", applog.FieldError, err)
				}
			}, nil
		}
		if ctx.Err() != nil {
			return nil, func() {}, ctx.Err()
		}
		logger.Warn("Failed to initialize AMQP client, sending receipt email directly", applog.FieldError, err)
	}

	if cfg.MailEnabled() {
		logger.Info("Receipt email enabled", "smtp_host", cfg.SMTPHost)
		return NewSMTPSender(cfg, logger), func() {}, nil
	}

	logger.Info("Receipt email disabled - no SMTP_HOST or AMQP_URL provided")
	return nil, func() {}, nil
}
