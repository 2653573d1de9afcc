package response

import (
	"errors"
	"net/http"

	"foodgram/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Success writes the payload as-is; list endpoints wrap their own page envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError maps a service error to its HTTP status and envelope.
func FromError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal("internal error", err)
	}

	status := StatusFor(e.Code)
	if status >= http.StatusInternalServerError {
		// logged by the error middleware; the cause never reaches the client
		_ = c.Error(err)
		Error(c, status, string(apperr.CodeInternal), "Internal error")
		return
	}

	if e.Field != "" {
		ErrorWithDetails(c, status, string(e.Code), e.Message, gin.H{e.Field: []string{e.Message}})
		return
	}
	Error(c, status, string(e.Code), e.Message)
}

func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
