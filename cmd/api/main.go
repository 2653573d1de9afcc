package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/pkg/logging"
	"foodgram/internal/server"
	"foodgram/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	cmd := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram recipe API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.AddCommand(serve, newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := setup()
			if err != nil {
				return err
			}
			if config.IsProdLike(cfg.AppEnv) {
				gin.SetMode(gin.ReleaseMode)
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}

			images, err := storage.New(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("init image storage: %w", err)
			}

			return server.Run(ctx, cfg.HTTPAddr, server.New(cfg, db, images))
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			_, err = openDatabase(cfg)
			return err
		},
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.SetDefault("foodgram", version, cfg.LogLevel)
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database schema is up to date")
	return db, nil
}
