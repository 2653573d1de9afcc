package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/pkg/logging"
	"foodgram/internal/pkg/validator"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var demoTags = []domain.Tag{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

var demoIngredients = []domain.Ingredient{
	{Name: "соль", MeasurementUnit: "г"},
	{Name: "сахар", MeasurementUnit: "г"},
	{Name: "мука пшеничная", MeasurementUnit: "г"},
	{Name: "молоко", MeasurementUnit: "мл"},
	{Name: "яйца", MeasurementUnit: "шт."},
	{Name: "масло сливочное", MeasurementUnit: "г"},
	{Name: "картофель", MeasurementUnit: "кг"},
}

// seed loads reference data. Running it again leaves existing rows alone.
// An optional argument names a JSON file with [{"name","measurement_unit"}]
// rows to import instead of the demo ingredients.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("load config", err)
	}
	logging.SetDefault("seed", "dev", cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fail("db connect", err)
	}
	if err := database.Migrate(db); err != nil {
		fail("migrate", err)
	}

	ingredients := demoIngredients
	if len(os.Args) > 1 {
		if ingredients, err = readIngredients(os.Args[1]); err != nil {
			fail("read ingredients", err)
		}
	}

	if err := validateRows(demoTags); err != nil {
		fail("validate tags", err)
	}
	if err := validateRows(ingredients); err != nil {
		fail("validate ingredients", err)
	}

	tags, err := insertMissing(db, demoTags)
	if err != nil {
		fail("seed tags", err)
	}
	added, err := insertMissing(db, ingredients)
	if err != nil {
		fail("seed ingredients", err)
	}
	slog.Info("seed completed", "tags", tags, "ingredients", added)
}

// validateRows checks every row before anything is written.
func validateRows[T any](rows []T) error {
	for i, row := range rows {
		if err := validator.Struct(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func insertMissing[T any](db *gorm.DB, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	// gorm writes generated ids back; keep the caller's rows untouched
	batch := slices.Clone(rows)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&batch, 500)
	return res.RowsAffected, res.Error
}

func readIngredients(path string) ([]domain.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []domain.Ingredient
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range rows {
		rows[i].ID = 0
	}
	return rows, nil
}

func fail(step string, err error) {
	slog.Error(step+" failed", "error", err)
	os.Exit(1)
}
