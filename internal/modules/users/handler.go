package users

import (
	"net/http"
	"strconv"

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth, optional gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.List)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, h.SetPassword)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optional, h.Get)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

// Register creates an account.
//
// @Summary Register
// @Tags Users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New user"
// @Success 201 {object} RegisteredUser
// @Failure 400 {object} map[string]any "Validation error"
// @Failure 409 {object} map[string]any "Email or username taken"
// @Router /users [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.Validation("body", "invalid JSON body"))
		return
	}
	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

func (h *Handler) List(c *gin.Context) {
	p := pagination.Parse(c, h.pageSize, h.maxPageSize)
	views, total, err := h.service.List(c.Request.Context(), middleware.UserID(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, views))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperr.NotFound("user not found"))
		return
	}
	h.respondUser(c, id)
}

func (h *Handler) Me(c *gin.Context) {
	h.respondUser(c, middleware.UserID(c))
}

func (h *Handler) respondUser(c *gin.Context, id int64) {
	view, err := h.service.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.Validation("body", "invalid JSON body"))
		return
	}
	if err := h.service.SetPassword(c.Request.Context(), middleware.UserID(c), req); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// Subscriptions lists followed authors with a preview of their recipes.
//
// @Summary My subscriptions
// @Tags Users
// @Produce json
// @Security TokenAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} pagination.Page[domain.AuthorView]
// @Router /users/subscriptions [get]
func (h *Handler) Subscriptions(c *gin.Context) {
	p := pagination.Parse(c, h.pageSize, h.maxPageSize)
	views, total, err := h.service.Subscriptions(c.Request.Context(), middleware.UserID(c), p, recipesLimit(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, views))
}

func (h *Handler) Subscribe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperr.NotFound("user not found"))
		return
	}
	view, err := h.service.Subscribe(c.Request.Context(), middleware.UserID(c), id, recipesLimit(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperr.NotFound("user not found"))
		return
	}
	if err := h.service.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// recipesLimit returns 0 (no limit) for missing or invalid values.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
