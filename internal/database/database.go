package database

import (
	"fmt"
	"log/slog"
	"strings"

	"foodgram/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if IsPostgres(dsn) {
		slog.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	slog.Info("using SQLite", "dsn", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// sqlite serialises writers; one connection keeps transactions and
	// in-memory databases consistent.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Recipe{}, "Tags", &domain.RecipeTag{}); err != nil {
		return fmt.Errorf("setup recipe_tags: %w", err)
	}
	return db.AutoMigrate(
		&domain.User{},
		&domain.AuthToken{},
		&domain.Tag{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeTag{},
		&domain.RecipeIngredient{},
		&domain.Follow{},
		&domain.UserRecipe{},
	)
}
