package catalog

import (
	"net/http"
	"strconv"

	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /tags and /ingredients. Both are public and unpaginated.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.ListTags)
	rg.GET("/tags/:id", h.GetTag)
	rg.GET("/ingredients", h.ListIngredients)
	rg.GET("/ingredients/:id", h.GetIngredient)
}

// @Summary List tags
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Tag
// @Router /tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.Tags(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "tag not found")
	if !ok {
		return
	}
	tag, err := h.service.Tag(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// ListIngredients supports ?name= as a case-sensitive name prefix.
//
// @Summary List ingredients
// @Tags Catalog
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} domain.Ingredient
// @Router /ingredients [get]
func (h *Handler) ListIngredients(c *gin.Context) {
	items, err := h.service.Ingredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "ingredient not found")
	if !ok {
		return
	}
	ing, err := h.service.Ingredient(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ing)
}

func pathID(c *gin.Context, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperr.NotFound(notFound))
		return 0, false
	}
	return id, true
}
