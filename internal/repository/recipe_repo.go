package repository

import (
	"context"
	"errors"
	"time"

	"foodgram/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientAmount is one requested ingredient line.
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// RecipeInput carries a validated write. Nil scalar pointers leave the stored
// value untouched on update; nil slices leave the association untouched.
type RecipeInput struct {
	Name        *string
	Text        *string
	Image       *string
	CookingTime *int
	Ingredients []IngredientAmount
	TagIDs      []int64
}

func (in RecipeInput) columns() map[string]any {
	cols := map[string]any{}
	if in.Name != nil {
		cols["name"] = *in.Name
	}
	if in.Text != nil {
		cols["text"] = *in.Text
	}
	if in.Image != nil {
		cols["image"] = *in.Image
	}
	if in.CookingTime != nil {
		cols["cooking_time"] = *in.CookingTime
	}
	return cols
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts the recipe with its ingredient lines and tags in one
// transaction and returns the new id.
func (r *RecipeRepository) Create(ctx context.Context, authorID int64, in RecipeInput) (int64, error) {
	rec := &domain.Recipe{
		AuthorID: authorID,
		PubDate:  time.Now().UTC(),
	}
	if in.Name != nil {
		rec.Name = *in.Name
	}
	if in.Text != nil {
		rec.Text = *in.Text
	}
	if in.Image != nil {
		rec.Image = *in.Image
	}
	if in.CookingTime != nil {
		rec.CookingTime = *in.CookingTime
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return err
		}
		if err := replaceIngredients(tx, rec.ID, in.Ingredients); err != nil {
			return err
		}
		return replaceTags(tx, rec.ID, in.TagIDs)
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// Update applies a partial scalar update and replaces the associations that
// are present in the input. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *RecipeRepository) Update(ctx context.Context, id int64, in RecipeInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Recipe{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}

		if cols := in.columns(); len(cols) > 0 {
			if err := tx.Model(&domain.Recipe{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := replaceIngredients(tx, id, in.Ingredients); err != nil {
				return err
			}
		}
		if in.TagIDs != nil {
			return replaceTags(tx, id, in.TagIDs)
		}
		return nil
	})
}

// Delete removes the recipe and every row that references it.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.UserRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.RecipeTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func replaceIngredients(tx *gorm.DB, recipeID int64, lines []IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]domain.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, domain.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: l.IngredientID,
			Amount:       l.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func replaceTags(tx *gorm.DB, recipeID int64, tagIDs []int64) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]domain.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, domain.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return tx.Create(&rows).Error
}

// AuthorOf returns the author of a recipe, or gorm.ErrRecordNotFound.
func (r *RecipeRepository) AuthorOf(ctx context.Context, id int64) (int64, error) {
	var rec domain.Recipe
	err := r.db.WithContext(ctx).Select("id", "author_id").First(&rec, id).Error
	if err != nil {
		return 0, err
	}
	return rec.AuthorID, nil
}

func (r *RecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.AuthorOf(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetByID loads one recipe with its flags computed for viewerID (0 means
// anonymous).
func (r *RecipeRepository) GetByID(ctx context.Context, id, viewerID int64) (*domain.Recipe, error) {
	var rec domain.Recipe
	err := projection(r.db.WithContext(ctx).Model(&domain.Recipe{}), viewerID).
		Where("recipes.id = ?", id).
		Take(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns one page of recipes matching f, newest first, plus the total
// number of matches.
func (r *RecipeRepository) List(ctx context.Context, f RecipeFilter, viewerID int64, limit, offset int) ([]domain.Recipe, int64, error) {
	var total int64
	if err := f.apply(r.db.WithContext(ctx).Model(&domain.Recipe{}), viewerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []domain.Recipe
	q := f.apply(r.db.WithContext(ctx).Model(&domain.Recipe{}), viewerID)
	err := projection(q, viewerID).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

const existsUserRecipe = "EXISTS (SELECT 1 FROM user_recipes ur WHERE ur.recipe_id = recipes.id AND ur.user_id = ? AND ur.kind = ?)"

// projection selects the recipe columns plus both viewer flags as correlated
// EXISTS subqueries, so a page is annotated in the same statement.
func projection(q *gorm.DB, viewerID int64) *gorm.DB {
	if viewerID > 0 {
		q = q.Select(
			"recipes.*, "+existsUserRecipe+" AS is_favorited, "+existsUserRecipe+" AS is_in_shopping_cart",
			viewerID, domain.KindFavorite, viewerID, domain.KindShoppingCart,
		)
	}
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("IngredientLines", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("IngredientLines.Ingredient")
}

// SummariesByAuthors returns up to limit newest recipes per author (all when
// limit <= 0), grouped by author id.
func (r *RecipeRepository) SummariesByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]domain.Recipe, error) {
	out := make(map[int64][]domain.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	var rows []domain.Recipe
	var err error
	if limit > 0 {
		err = r.db.WithContext(ctx).Raw(`
SELECT id, author_id, name, image, text, cooking_time, pub_date FROM (
	SELECT recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY pub_date DESC, id DESC) AS rn
	FROM recipes WHERE author_id IN ?
) ranked
WHERE rn <= ?
ORDER BY author_id, pub_date DESC, id DESC`, authorIDs, limit).Scan(&rows).Error
	} else {
		err = r.db.WithContext(ctx).
			Where("author_id IN ?", authorIDs).
			Order("author_id").Order("pub_date DESC").Order("id DESC").
			Find(&rows).Error
	}
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		out[rec.AuthorID] = append(out[rec.AuthorID], rec)
	}
	return out, nil
}

func (r *RecipeRepository) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		AuthorID int64
		N        int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Select("author_id, COUNT(*) AS n").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.AuthorID] = row.N
	}
	return out, nil
}
