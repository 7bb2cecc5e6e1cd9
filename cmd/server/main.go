package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/colstats/internal/config"
	"github.com/JonMunkholm/colstats/internal/core"
	"github.com/JonMunkholm/colstats/internal/logging"
	"github.com/JonMunkholm/colstats/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Stats.MaxFileSize,
		"max_concurrent", cfg.Stats.MaxConcurrent,
		"cache_enabled", cfg.Cache.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	service, err := core.NewService(cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	defer service.Close()

	server := web.NewServer(service, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop taking requests first, then let running computations finish
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if active := service.Status().Limiter.Active; active > 0 {
			slog.Info("waiting for computations to complete", "active", active)
			if err := service.WaitForIdle(shutdownCtx); err != nil {
				slog.Warn("computations did not complete in time", "error", err)
			}
		}
	}()

	startErr := server.Start()
	if startErr != nil {
		slog.Error("server failed", "error", startErr)
		stop()
	}
	<-done
	slog.Info("server stopped")

	if startErr != nil {
		service.Close()
		os.Exit(1)
	}
}
