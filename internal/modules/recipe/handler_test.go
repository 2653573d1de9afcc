package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodgram/internal/database/dbtest"
	"foodgram/internal/domain"
	"foodgram/internal/middleware"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"
	"foodgram/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	db     *gorm.DB
	router *gin.Engine
	jwt    *jwtsvc.Service
	tokens *repository.TokenRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	jwt := jwtsvc.New("test-secret", time.Hour)
	tokens := repository.NewTokenRepository(db)
	recipes := repository.NewRecipeRepository(db)

	svc := NewService(Deps{
		Recipes:       recipes,
		Follows:       repository.NewFollowRepository(db),
		Validator:     NewValidator(repository.NewIngredientRepository(db), repository.NewTagRepository(db)),
		Images:        storage.NewLocalStore(t.TempDir(), "/media"),
		FavoriteStore: repository.NewUserRecipeStore(db, domain.KindFavorite),
		CartStore:     repository.NewUserRecipeStore(db, domain.KindShoppingCart),
	})

	authn := middleware.NewAuthenticator(jwt, tokens)
	owner := middleware.NewOwnershipChecker(recipes, "Recipe")

	r := gin.New()
	NewHandler(svc, 6, 100).RegisterRoutes(r.Group("/api"), authn.RequireAuth(), authn.OptionalAuth(), owner.RequireAuthor())

	// catalog rows with the ids the scenarios reference
	require.NoError(t, db.Create(&[]domain.Tag{
		{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{ID: 2, Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
	}).Error)
	require.NoError(t, db.Create(&[]domain.Ingredient{
		{ID: 10, Name: "salt", MeasurementUnit: "g"},
		{ID: 11, Name: "flour", MeasurementUnit: "g"},
		{ID: 12, Name: "milk", MeasurementUnit: "ml"},
	}).Error)

	return &harness{db: db, router: r, jwt: jwt, tokens: tokens}
}

// login issues a stored token for a fresh user.
func (h *harness) login(t *testing.T, username string) (*domain.User, string) {
	t.Helper()
	u := dbtest.User(t, h.db, username)
	token, err := h.jwt.GenerateToken(u.ID)
	require.NoError(t, err)
	require.NoError(t, h.tokens.Create(t.Context(), &domain.AuthToken{
		UserID:    u.ID,
		TokenHash: jwtsvc.HashToken(token),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return u, token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func recipeBody(name string, tags []int64, lines ...IngredientAmountRequest) map[string]any {
	return map[string]any{
		"ingredients":  lines,
		"tags":         tags,
		"image":        pixelPNG,
		"name":         name,
		"text":         "Mix and cook.",
		"cooking_time": 15,
	}
}

func (h *harness) createRecipe(t *testing.T, token, name string, tags []int64, lines ...IngredientAmountRequest) domain.RecipeView {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/recipes", token, recipeBody(name, tags, lines...))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v domain.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCreateRecipe(t *testing.T) {
	h := newHarness(t)
	author, token := h.login(t, "alice")

	w := h.do(t, http.MethodPost, "/api/recipes", token, recipeBody("Pancakes", []int64{1, 2},
		IngredientAmountRequest{ID: 10, Amount: 2},
		IngredientAmountRequest{ID: 11, Amount: 3},
	))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var v domain.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))

	assert.NotZero(t, v.ID)
	assert.Equal(t, author.ID, v.Author.ID)
	assert.False(t, v.Author.IsSubscribed)
	assert.False(t, v.IsFavorited)
	assert.False(t, v.IsInShoppingCart)
	assert.Equal(t, 15, v.CookingTime)
	assert.True(t, strings.HasPrefix(v.Image, "/media/recipes/"), v.Image)

	require.Len(t, v.Tags, 2)
	assert.Equal(t, "breakfast", v.Tags[0].Slug)
	assert.Equal(t, "dinner", v.Tags[1].Slug)

	require.Len(t, v.Ingredients, 2)
	assert.Equal(t, domain.IngredientLine{ID: 10, Name: "salt", MeasurementUnit: "g", Amount: 2}, v.Ingredients[0])
	assert.Equal(t, domain.IngredientLine{ID: 11, Name: "flour", MeasurementUnit: "g", Amount: 3}, v.Ingredients[1])
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/recipes", "", recipeBody("Pancakes", []int64{1},
		IngredientAmountRequest{ID: 10, Amount: 1}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, dbtest.Count(t, h.db, "recipes"))
}

func TestCreateRecipeDuplicateIngredientLeavesNoRows(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "alice")

	w := h.do(t, http.MethodPost, "/api/recipes", token, recipeBody("Soup", []int64{1},
		IngredientAmountRequest{ID: 10, Amount: 1},
		IngredientAmountRequest{ID: 10, Amount: 2},
	))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"ingredients"`)

	assert.Zero(t, dbtest.Count(t, h.db, "recipes"))
	assert.Zero(t, dbtest.Count(t, h.db, "recipe_ingredients"))
	assert.Zero(t, dbtest.Count(t, h.db, "recipe_tags"))
}

func TestGetRecipe(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "alice")
	created := h.createRecipe(t, token, "Pancakes", []int64{1}, IngredientAmountRequest{ID: 10, Amount: 1})

	w := h.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var v domain.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, created, v)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/recipes/999", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/recipes/abc", "", nil).Code)

	// a revoked or forged token is not downgraded to anonymous
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/recipes", "forged", nil).Code)
}

func TestUpdateRecipeReplacesLines(t *testing.T) {
	h := newHarness(t)
	_, token := h.login(t, "alice")
	created := h.createRecipe(t, token, "Pancakes", []int64{1, 2},
		IngredientAmountRequest{ID: 10, Amount: 2},
		IngredientAmountRequest{ID: 11, Amount: 3},
	)

	w := h.do(t, http.MethodPatch, fmt.Sprintf("/api/recipes/%d", created.ID), token, map[string]any{
		"ingredients": []IngredientAmountRequest{{ID: 12, Amount: 250}},
		"tags":        []int64{2},
		"name":        "Crepes",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var v domain.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "Crepes", v.Name)
	assert.Equal(t, created.Text, v.Text)
	assert.Equal(t, created.Image, v.Image)
	assert.Equal(t, created.CookingTime, v.CookingTime)
	require.Len(t, v.Ingredients, 1)
	assert.Equal(t, int64(12), v.Ingredients[0].ID)
	require.Len(t, v.Tags, 1)
	assert.Equal(t, int64(2), v.Tags[0].ID)

	assert.Equal(t, int64(1), dbtest.Count(t, h.db, "recipe_ingredients", "recipe_id = ?", created.ID))
	assert.Equal(t, int64(1), dbtest.Count(t, h.db, "recipe_tags", "recipe_id = ?", created.ID))
}

func TestOnlyAuthorMayModify(t *testing.T) {
	h := newHarness(t)
	_, alice := h.login(t, "alice")
	_, bob := h.login(t, "bob")
	created := h.createRecipe(t, alice, "Pancakes", []int64{1}, IngredientAmountRequest{ID: 10, Amount: 1})
	path := fmt.Sprintf("/api/recipes/%d", created.ID)

	w := h.do(t, http.MethodPatch, path, bob, map[string]any{
		"ingredients": []IngredientAmountRequest{{ID: 11, Amount: 1}},
		"tags":        []int64{2},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodDelete, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, "/api/recipes/999", bob, nil).Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, path, alice, nil).Code)
	assert.Zero(t, dbtest.Count(t, h.db, "recipes"))
	assert.Zero(t, dbtest.Count(t, h.db, "recipe_ingredients"))
}

func TestFavoriteToggle(t *testing.T) {
	h := newHarness(t)
	_, alice := h.login(t, "alice")
	bob, bobToken := h.login(t, "bob")
	created := h.createRecipe(t, alice, "Pancakes", []int64{1}, IngredientAmountRequest{ID: 10, Amount: 1})
	path := fmt.Sprintf("/api/recipes/%d/favorite", created.ID)

	w := h.do(t, http.MethodPost, path, bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var summary domain.RecipeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, domain.NewRecipeSummary(&domain.Recipe{
		ID: created.ID, Name: created.Name, Image: created.Image, CookingTime: created.CookingTime,
	}), summary)

	assert.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, path, bobToken, nil).Code)
	assert.Equal(t, int64(1), dbtest.Count(t, h.db, "user_recipes", "user_id = ? AND kind = ?", bob.ID, string(domain.KindFavorite)))

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, path, bobToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, path, bobToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/recipes/999/favorite", bobToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, path, "", nil).Code)
}

func TestListFiltersByFavorites(t *testing.T) {
	h := newHarness(t)
	_, alice := h.login(t, "alice")
	first := h.createRecipe(t, alice, "First", []int64{1}, IngredientAmountRequest{ID: 10, Amount: 1})
	h.createRecipe(t, alice, "Second", []int64{2}, IngredientAmountRequest{ID: 11, Amount: 1})
	third := h.createRecipe(t, alice, "Third", []int64{1}, IngredientAmountRequest{ID: 12, Amount: 1})

	for _, id := range []int64{first.ID, third.ID} {
		w := h.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", id), alice, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var page struct {
		Count   int64               `json:"count"`
		Next    *string             `json:"next"`
		Results []domain.RecipeView `json:"results"`
	}

	w := h.do(t, http.MethodGet, "/api/recipes?is_favorited=1", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, third.ID, page.Results[0].ID)
	assert.Equal(t, first.ID, page.Results[1].ID)
	assert.True(t, page.Results[0].IsFavorited)

	// anonymous callers have no favorites
	w = h.do(t, http.MethodGet, "/api/recipes?is_favorited=1", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Results)

	w = h.do(t, http.MethodGet, "/api/recipes?tags=dinner&limit=1", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Count)
	assert.Equal(t, "Second", page.Results[0].Name)
	assert.Nil(t, page.Next)

	w = h.do(t, http.MethodGet, "/api/recipes?limit=2", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Count)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
}

func TestDownloadShoppingCart(t *testing.T) {
	h := newHarness(t)
	_, alice := h.login(t, "alice")
	_, bob := h.login(t, "bob")
	first := h.createRecipe(t, alice, "Soup", []int64{1}, IngredientAmountRequest{ID: 10, Amount: 5})
	second := h.createRecipe(t, alice, "Bread", []int64{2},
		IngredientAmountRequest{ID: 10, Amount: 3},
		IngredientAmountRequest{ID: 11, Amount: 500},
	)

	for _, id := range []int64{first.ID, second.ID} {
		w := h.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), bob, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := h.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ShoppingListFilename)
	assert.Equal(t, "flour - 500 (g)\nsalt - 8 (g)\n", w.Body.String())

	// the author's own cart is empty
	w = h.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", nil).Code)
}
