package recipe

import (
	"context"
	"net/http"
	"strconv"

	"foodgram/internal/domain"
	"foodgram/internal/middleware"
	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     *Service
	pageSize    int
	maxPageSize int
}

func NewHandler(service *Service, pageSize, maxPageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize, maxPageSize: maxPageSize}
}

// RegisterRoutes mounts /recipes. auth and optional come from the
// authenticator; owner guards PATCH and DELETE.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth, optional, owner gin.HandlerFunc) {
	recipes := rg.Group("/recipes")
	{
		recipes.GET("", optional, h.List)
		recipes.POST("", auth, h.Create)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.Get)
		recipes.PATCH("/:id", auth, owner, h.Update)
		recipes.DELETE("/:id", auth, owner, h.Delete)

		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

// List returns a page of recipes, newest first.
//
// @Summary List recipes
// @Tags Recipes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size"
// @Param author query int false "Author id"
// @Param tags query []string false "Tag slugs, any of"
// @Param is_favorited query int false "1 restricts to the caller's favorites"
// @Param is_in_shopping_cart query int false "1 restricts to the caller's cart"
// @Success 200 {object} pagination.Page[domain.RecipeView]
// @Router /recipes [get]
func (h *Handler) List(c *gin.Context) {
	p := pagination.Parse(c, h.pageSize, h.maxPageSize)
	views, total, err := h.service.List(c.Request.Context(), filterFromQuery(c), middleware.UserID(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, views))
}

// Create adds a recipe authored by the caller.
//
// @Summary Create recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body CreateRecipeRequest true "Recipe"
// @Success 201 {object} domain.RecipeView
// @Failure 400 {object} map[string]any "Validation error"
// @Failure 401 {object} map[string]any "Not authenticated"
// @Router /recipes [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.Validation("body", "invalid JSON body"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Update changes a recipe of the caller. Scalars are partial, ingredients
// and tags are replaced.
//
// @Summary Update recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe id"
// @Param request body UpdateRecipeRequest true "Changes"
// @Success 200 {object} domain.RecipeView
// @Failure 403 {object} map[string]any "Not the author"
// @Failure 404 {object} map[string]any "Recipe not found"
// @Router /recipes/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.Validation("body", "invalid JSON body"))
		return
	}

	view, err := h.service.Update(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	h.add(c, h.service.AddFavorite)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.remove(c, h.service.RemoveFavorite)
}

func (h *Handler) AddToCart(c *gin.Context) {
	h.add(c, h.service.AddToCart)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.remove(c, h.service.RemoveFromCart)
}

type addFunc func(ctx context.Context, userID, recipeID int64) (*domain.RecipeSummary, error)

func (h *Handler) add(c *gin.Context, fn addFunc) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	summary, err := fn(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, summary)
}

func (h *Handler) remove(c *gin.Context, fn func(ctx context.Context, userID, recipeID int64) error) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadShoppingCart returns the aggregated ingredient list as a text
// attachment.
//
// @Summary Download shopping list
// @Tags Recipes
// @Produce plain
// @Security TokenAuth
// @Success 200 {string} string "name - total (unit) per line"
// @Router /recipes/download_shopping_cart [get]
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	body, err := h.service.ShoppingList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperr.NotFound("recipe not found"))
		return 0, false
	}
	return id, true
}
