package main

import (
	"context"
	"log/slog"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/pkg/logging"
	"foodgram/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	logging.SetDefault("auth_cleanup", "dev", cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}

	n, err := repository.NewTokenRepository(db).DeleteExpired(context.Background())
	if err != nil {
		slog.Error("cleanup auth_tokens failed", "error", err)
		os.Exit(1)
	}
	slog.Info("auth cleanup completed", "auth_tokens", n)
}
