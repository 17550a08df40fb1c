package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipenotify/internal/config"
	"pipenotify/internal/domain/notification"
	"pipenotify/internal/infra/console"
	"pipenotify/internal/infra/queue"
	"pipenotify/internal/infra/store"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("worker configuration loaded", "channel", cfg.Delivery.Channel)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	pipeline, err := cfg.BuildPipeline(time.Now())
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	// Delivery lines go to stdout, logs to stderr
	provider, err := console.New(cfg.DeliveryChannel(), os.Stdout)
	if err != nil {
		slog.Error("failed to create delivery provider", "error", err)
		os.Exit(1)
	}

	var deliveryStore notification.DeliveryStore
	if cfg.Supabase.Enabled() {
		deliveryStore, err = store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			slog.Error("failed to initialize supabase store", "error", err)
			os.Exit(1)
		}
		slog.Info("supabase store initialized")
	} else {
		slog.Warn("supabase not configured, delivery history is kept in memory for this process only")
		deliveryStore = store.NewMemoryStore()
	}

	dispatcher := notification.NewDispatcher(pipeline, provider)
	worker := notification.NewWorker(dispatcher, deliveryStore)

	// ==========================================
	// Asynq Server (task processing)
	// ==========================================

	asynqServer := queue.NewServer(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
	)

	mux := queue.NewServeMux(worker)

	go func() {
		slog.Info("worker starting",
			"concurrency", cfg.Queue.Concurrency,
			"redis", cfg.Redis.Address,
			"pipeline", pipeline.Name(),
		)
		if err := asynqServer.Run(mux); err != nil {
			slog.Error("worker failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// ==========================================
	// Graceful Shutdown
	// ==========================================

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	asynqServer.Shutdown()
	slog.Info("worker exited gracefully")
}
