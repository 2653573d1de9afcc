package domain

import "time"

type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AuthorID    int64     `json:"-" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Image       string    `json:"image" gorm:"not null"`
	Text        string    `json:"text" gorm:"not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	PubDate     time.Time `json:"-" gorm:"not null;index"`

	Author          *User              `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags            []Tag              `json:"-" gorm:"many2many:recipe_tags"`
	IngredientLines []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID"`

	// Per-viewer annotations filled by the read query; never stored.
	IsFavorited      bool `json:"-" gorm:"->;-:migration"`
	IsInShoppingCart bool `json:"-" gorm:"->;-:migration"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient carries the amount of one ingredient in one recipe.
type RecipeIngredient struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	Amount       int   `json:"amount" gorm:"not null"`

	Recipe     *Recipe     `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ingredient *Ingredient `json:"-" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

type RecipeTag struct {
	RecipeID int64 `gorm:"primaryKey"`
	TagID    int64 `gorm:"primaryKey;index"`
}

func (RecipeTag) TableName() string { return "recipe_tags" }

// IngredientLine is one ingredient of a recipe as returned to clients.
type IngredientLine struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe representation for one viewer.
type RecipeView struct {
	ID               int64            `json:"id"`
	Tags             []Tag            `json:"tags"`
	Author           UserView         `json:"author"`
	Ingredients      []IngredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// RecipeSummary is returned by the favorite and shopping cart endpoints and
// inside subscription listings.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeSummary(r *Recipe) RecipeSummary {
	return RecipeSummary{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// NewRecipeView assembles the projection. Tags and ingredient lines are
// expected to be loaded already; subscribed refers to the author.
func NewRecipeView(r *Recipe, subscribed bool) RecipeView {
	v := RecipeView{
		ID:               r.ID,
		Tags:             make([]Tag, 0, len(r.Tags)),
		Ingredients:      make([]IngredientLine, 0, len(r.IngredientLines)),
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if r.Author != nil {
		v.Author = NewUserView(r.Author, subscribed)
	}
	v.Tags = append(v.Tags, r.Tags...)
	for _, line := range r.IngredientLines {
		il := IngredientLine{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			il.Name = line.Ingredient.Name
			il.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		v.Ingredients = append(v.Ingredients, il)
	}
	return v
}

// AuthorView is a followed user together with a preview of their recipes.
type AuthorView struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}
