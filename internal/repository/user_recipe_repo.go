package repository

import (
	"context"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

// UserRecipeStore manages one kind of user-to-recipe relation.
type UserRecipeStore struct {
	db   *gorm.DB
	kind domain.UserRecipeKind
}

func NewUserRecipeStore(db *gorm.DB, kind domain.UserRecipeKind) *UserRecipeStore {
	return &UserRecipeStore{db: db, kind: kind}
}

func (s *UserRecipeStore) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.UserRecipe{}).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, s.kind).
		Count(&n).Error
	return n > 0, err
}

func (s *UserRecipeStore) Insert(ctx context.Context, userID, recipeID int64) error {
	return s.db.WithContext(ctx).Create(&domain.UserRecipe{
		UserID:   userID,
		RecipeID: recipeID,
		Kind:     s.kind,
	}).Error
}

// Delete removes the pair and reports whether a row existed.
func (s *UserRecipeStore) Delete(ctx context.Context, userID, recipeID int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ? AND kind = ?", userID, recipeID, s.kind).
		Delete(&domain.UserRecipe{})
	return res.RowsAffected > 0, res.Error
}

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// ShoppingList sums ingredient amounts over every recipe the user holds in
// this relation, grouped by ingredient name and unit.
func (s *UserRecipeStore) ShoppingList(ctx context.Context, userID int64) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).Table("user_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = user_recipes.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("user_recipes.user_id = ? AND user_recipes.kind = ?", userID, s.kind).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	return items, err
}
