package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"voxboard/backend/internal/app"
	"voxboard/backend/internal/config"
	"voxboard/backend/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	if err := run(context.Background()); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer deps.DB.Close()
	defer deps.Embedder.Close()

	a := app.New(cfg, deps.DB, deps.Backend, deps.Embedder, deps.Voice)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Handler)
}
