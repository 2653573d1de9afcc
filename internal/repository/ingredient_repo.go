package repository

import (
	"context"
	"unicode/utf8"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// List returns ingredients whose name starts with prefix. The comparison is
// case-sensitive on every store: sqlite LIKE ignores case, so substr is used.
func (r *IngredientRepository) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ingredient{})
	if prefix != "" {
		q = q.Where("substr(name, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
	}

	var items []domain.Ingredient
	err := q.Order("name").Order("id").Find(&items).Error
	return items, err
}

func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepository) CountExisting(ctx context.Context, ids []int64) (int64, error) {
	return countDistinctIDs(ctx, r.db, &domain.Ingredient{}, ids)
}
