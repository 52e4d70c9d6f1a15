// Command goldloan-mailer consumes queued receipt emails and sends them
// over SMTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"goldloan/internal/amqp"
	"goldloan/internal/cli"
	applog "goldloan/internal/log"
	"goldloan/internal/worker"
)

const dialAttempts = 10

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting goldloan-mailer", applog.FieldOperation, applog.OpStartup)

	if !cfg.MailQueued() {
		return errors.New("AMQP_URL is required to consume receipt emails")
	}
	if !cfg.MailEnabled() {
		return errors.New("SMTP_HOST is required to send receipt emails")
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger, dialAttempts)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	mailWorker := worker.NewMailWorker(cli.NewSMTPSender(cfg, logger), logger)

	err = client.ConsumeReceiptMail(ctx, mailWorker.HandleReceiptMail)
	sent, failed := mailWorker.Stats()
	logger.Info("Worker shutdown complete",
		applog.FieldOperation, applog.OpShutdown,
		"sent", sent,
		"failed", failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume receipt emails: %w", err)
	}
	return nil
}
