package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipenotify/internal/config"
	"pipenotify/internal/domain/notification"
	"pipenotify/internal/infra/idempotency"
	"pipenotify/internal/infra/queue"
	"pipenotify/internal/infra/store"
	"pipenotify/internal/router"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"channel", cfg.Delivery.Channel,
	)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	pipeline, err := cfg.BuildPipeline(time.Now())
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	slog.Info("pipeline loaded", "name", pipeline.Name(), "stages", len(pipeline.Stages()))

	deliveryStore, err := newDeliveryStore(cfg)
	if err != nil {
		slog.Error("failed to initialize delivery store", "error", err)
		os.Exit(1)
	}

	// Asynq Client (for enqueuing tasks)
	asynqClient := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	defer asynqClient.Close()
	slog.Info("asynq client initialized", "redis", cfg.Redis.Address)

	// Idempotency guard
	guard := idempotency.NewRedisGuard(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	defer guard.Close()

	// Service
	service := notification.NewService(
		pipeline,
		cfg.DeliveryChannel(),
		queue.NewEnqueuer(asynqClient),
		deliveryStore,
		notification.WithIdempotencyGuard(guard, cfg.IdempotencyTTL()),
	)

	// Handler
	handler := notification.NewHandler(service)

	// Router
	r := router.New(cfg, handler)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// newDeliveryStore returns the shared Supabase store, or nil when none is configured.
func newDeliveryStore(cfg *config.Config) (notification.DeliveryStore, error) {
	if !cfg.Supabase.Enabled() {
		slog.Warn("supabase not configured, GET /api/v1/deliveries will answer 503")
		return nil, nil
	}
	s, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		return nil, err
	}
	slog.Info("supabase store initialized")
	return s, nil
}
