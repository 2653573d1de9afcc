package middleware

import (
	"net/http"
	"strconv"

	"foodgram/internal/pkg/metrics"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies one token bucket to all requests.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	limit := strconv.Itoa(int(limiter.Limit()))
	return func(c *gin.Context) {
		if !limiter.Allow() {
			metrics.RateLimitRejects.Inc()
			c.Header("Retry-After", "1")
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
			return
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Next()
	}
}
