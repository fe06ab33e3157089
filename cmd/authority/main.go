package main

import (
	"context"
	"log/slog"
	"os"

	"go-task-relay/internal/app"
	"go-task-relay/internal/config"
	"go-task-relay/internal/logger"
)

func main() {
	slog.SetDefault(logger.New(os.Stdout, logger.FormatPretty, "info"))

	cfg, err := config.LoadAuthority()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Logging.Format, cfg.Logging.Level))

	application, err := app.NewAuthority(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize authority", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("authority run failed", "error", err)
		os.Exit(1)
	}
}
