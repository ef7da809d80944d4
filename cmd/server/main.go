package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nmbr1stnr/tipsandtrim/internal/app"
	"github.com/nmbr1stnr/tipsandtrim/internal/config"
	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	for _, key := range cfg.Warnings() {
		logger.Warn("configuration value missing", map[string]any{
			"key": key,
		})
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", map[string]any{
			"error": err.Error(),
		})
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Fatal("http server failed", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("onboarding relay started", map[string]any{
		"port":         cfg.AppPort,
		"env":          cfg.AppEnv,
		"store_driver": cfg.StoreDriver,
	})

	<-ctx.Done()

	logger.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", map[string]any{
			"error": err.Error(),
		})
	}

	logger.Info("onboarding relay stopped cleanly", nil)
}
