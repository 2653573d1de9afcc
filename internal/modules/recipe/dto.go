package recipe

import (
	"strconv"

	"foodgram/internal/repository"

	"github.com/gin-gonic/gin"
)

type IngredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type CreateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time"`
}

// UpdateRecipeRequest is a partial update: nil scalars are left unchanged.
// Ingredients and tags are always replaced in full.
type UpdateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       *string                   `json:"image"`
	Name        *string                   `json:"name" validate:"omitnil,min=1,max=200"`
	Text        *string                   `json:"text" validate:"omitnil,min=1"`
	CookingTime *int                      `json:"cooking_time"`
}

// payload is the common shape both requests are validated in.
type payload struct {
	Ingredients []IngredientAmountRequest
	Tags        []int64
	Image       *string
	Name        *string
	Text        *string
	CookingTime *int
}

func (r CreateRecipeRequest) payload() payload {
	p := payload{
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
		Name:        &r.Name,
		Text:        &r.Text,
		CookingTime: &r.CookingTime,
	}
	if r.Image != "" {
		p.Image = &r.Image
	}
	return p
}

func (r UpdateRecipeRequest) payload() payload {
	return payload{
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
		Image:       r.Image,
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
	}
}

// filterFromQuery reads author, tags (repeatable), is_favorited and
// is_in_shopping_cart. Only "1" and "true" enable a flag.
func filterFromQuery(c *gin.Context) repository.RecipeFilter {
	f := repository.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if author, err := strconv.ParseInt(c.Query("author"), 10, 64); err == nil && author > 0 {
		f.AuthorID = author
	}
	return f
}

func queryFlag(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true" || v == "True"
}
