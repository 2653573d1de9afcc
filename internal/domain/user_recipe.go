package domain

import "time"

// UserRecipeKind discriminates the user-to-recipe relations that share one
// table.
type UserRecipeKind string

const (
	KindFavorite     UserRecipeKind = "favorite"
	KindShoppingCart UserRecipeKind = "shopping_cart"
)

// UserRecipe is a favorite or a shopping cart entry, unique per
// (user, recipe, kind).
type UserRecipe struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	UserID    int64          `json:"user_id" gorm:"not null;uniqueIndex:idx_user_recipe_kind"`
	RecipeID  int64          `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_user_recipe_kind"`
	Kind      UserRecipeKind `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_user_recipe_kind"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (UserRecipe) TableName() string { return "user_recipes" }
