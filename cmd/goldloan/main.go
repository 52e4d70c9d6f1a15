package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"goldloan/internal/cache"
	"goldloan/internal/cli"
	apphttp "goldloan/internal/http"
	applog "goldloan/internal/log"
	"goldloan/internal/receipt"
)

const shutdownTimeout = 30 * time.Second

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
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	cacheManager := cache.NewManager(logger)
	store, closeStore, err := cli.InitSessionStore(ctx, cfg, cacheManager, logger)
	if err != nil {
		logger.Error("Failed to initialize session store", applog.FieldError, err, "backend", cfg.SessionBackend)
		return err
	}
	defer closeStore()

	if err := cacheManager.StartCleanup(cfg.SessionCleanupSchedule); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	defer cacheManager.Stop()

	opts := apphttp.Options{
		Addr:   ":" + cfg.Port,
		Policy: cfg.Policy(),
		Business: receipt.Business{
			Name:           cfg.BusinessName,
			Address:        cfg.BusinessAddress,
			CurrencySymbol: cfg.CurrencySymbol,
		},
		Sessions:           store,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	mailer, closeMailer, err := cli.InitReceiptMailer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize receipt email: %w", err)
	}
	defer closeMailer()
	if mailer != nil {
		opts.Mailer = mailer
	}

	srv, err := apphttp.NewServer(opts)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting goldloan server",
			"port", cfg.Port,
			"session_backend", cfg.SessionBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
