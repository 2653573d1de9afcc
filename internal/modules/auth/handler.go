package auth

import (
	"net/http"

	"foodgram/internal/middleware"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	tokens := rg.Group("/auth/token")
	{
		tokens.POST("/login", h.Login)
		tokens.POST("/logout", auth, h.Logout)
	}
}

// Login exchanges email and password for an API token.
//
// @Summary Obtain token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]any "Invalid credentials"
// @Router /auth/token/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperr.Validation("body", "invalid JSON body"))
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout revokes the current token.
//
// @Summary Revoke token
// @Tags Auth
// @Security TokenAuth
// @Success 204
// @Router /auth/token/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.Token(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
