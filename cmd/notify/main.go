// Command notify dispatches every stage of the configured pipeline once and
// prints one delivery line per notification to standard output.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipenotify/internal/config"
	"pipenotify/internal/domain/notification"
	"pipenotify/internal/infra/console"
)

func main() {
	// Logs go to stderr so stdout carries only delivery lines
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pipeline, err := cfg.BuildPipeline(time.Now())
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	provider, err := console.New(cfg.DeliveryChannel(), os.Stdout)
	if err != nil {
		slog.Error("failed to create delivery provider", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.NewDispatcher(pipeline, provider)
	if err := dispatcher.SendAll(ctx); err != nil {
		slog.Error("dispatch failed", "pipeline", pipeline.Name(), "error", err)
		os.Exit(1)
	}
}
