package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/crisismap/crisis-data-api/internal/adapter/http"
	"github.com/crisismap/crisis-data-api/internal/config"
	"github.com/crisismap/crisis-data-api/internal/dataset"
	"github.com/crisismap/crisis-data-api/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var provider dataset.Provider = dataset.NewStore(cfg.DataDir, cfg.Region, logger, metrics)
	if cfg.CacheEnabled {
		provider = dataset.NewCachedProvider(provider, cfg.CacheTTL, cfg.CacheSize, metrics)
		logger.Info("dataset cache enabled", "ttl", cfg.CacheTTL, "size", cfg.CacheSize)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, provider, cfg.Region, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
