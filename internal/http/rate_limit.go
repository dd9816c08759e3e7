package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devport-api/internal/service"
)

// RateLimiters agrupa un limiter por ruta protegida; un nil deja pasar todo.
type RateLimiters struct {
	SendOTP        service.RateLimiter
	VerifyOTP      service.RateLimiter
	ForgotPassword service.RateLimiter
}

// RateLimit corta la cadena con 429 cuando la IP del cliente agoto su cupo.
func RateLimit(limiter service.RateLimiter, policy service.RateLimitPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			respondFailure(c, http.StatusTooManyRequests, policy.Message)
			return
		}
		c.Next()
	}
}
