package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/influencer-bfa-go/internal/config"
	"github.com/boddenberg/influencer-bfa-go/internal/handler"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/cache"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/client"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/observability"
	"github.com/boddenberg/influencer-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/influencer-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_api_url", cfg.BackendAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("max_backoff", cfg.MaxBackoff),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Strings("cors_origins", cfg.CORSOrigins),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "influencer-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backend := client.New(httpClient, cfg.BackendAPIURL, resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)

	// --- Sessions ---
	var store *cache.InMemory[*service.App]
	store = cache.New[*service.App](cfg.SessionTTL,
		cache.WithOnEvict(func(sid string, _ *service.App) {
			logger.Debug("session evicted", zap.String("sid", sid))
			metrics.SetActiveSessions(store.Len())
		}),
	)
	defer store.Close()

	sessions := service.NewSessions(store, backend, cfg.SessionSecret, cfg.SessionTTL, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(sessions, metrics, logger, cfg.CORSOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
