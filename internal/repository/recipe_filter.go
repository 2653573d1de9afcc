package repository

import (
	"foodgram/internal/domain"

	"gorm.io/gorm"
)

// RecipeFilter narrows a recipe listing. False flags mean "no restriction",
// not "exclude".
type RecipeFilter struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

func (f RecipeFilter) apply(q *gorm.DB, viewerID int64) *gorm.DB {
	for _, scope := range f.scopes(viewerID) {
		q = scope(q)
	}
	return q
}

func (f RecipeFilter) scopes(viewerID int64) []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.AuthorID > 0 {
		scopes = append(scopes, byAuthor(f.AuthorID))
	}
	if len(f.TagSlugs) > 0 {
		scopes = append(scopes, byAnyTag(f.TagSlugs))
	}
	if f.IsFavorited {
		scopes = append(scopes, inUserRelation(viewerID, domain.KindFavorite))
	}
	if f.IsInShoppingCart {
		scopes = append(scopes, inUserRelation(viewerID, domain.KindShoppingCart))
	}
	return scopes
}

func byAuthor(authorID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recipes.author_id = ?", authorID)
	}
}

func byAnyTag(slugs []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE t.slug IN ?)",
			slugs,
		)
	}
}

// inUserRelation keeps recipes the viewer has in the given relation. An
// anonymous viewer has none.
func inUserRelation(viewerID int64, kind domain.UserRecipeKind) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID <= 0 {
			return db.Where("1 = 0")
		}
		return db.Where(existsUserRecipe, viewerID, kind)
	}
}
