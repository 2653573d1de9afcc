package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/metrics"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", requestID(c),
			"user_id", UserID(c),
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorLogger recovers from panics and logs errors attached to the context.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				metrics.PanicRecoveries.Inc()
				logRequestError(c, start, "panic", apperr.CodeInternal, fmt.Sprintf("%v", recovered), debug.Stack())
				response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
				return
			}

			for _, err := range c.Errors {
				logRequestError(c, start, fmt.Sprintf("%v", err.Type), apperr.CodeOf(err.Err), err.Error(), nil)
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType string, code apperr.Code, message string, stack []byte) {
	attrs := []any{
		"type", errType,
		"code", string(code),
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"user_id", UserID(c),
		"request_id", requestID(c),
		"latency", time.Since(start).String(),
		"error", message,
	}
	if stack != nil {
		attrs = append(attrs, "stack", string(stack))
	}
	slog.ErrorContext(c.Request.Context(), "request_error", attrs...)
}
