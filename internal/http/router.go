package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devport-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas de /api/auth.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	authGuard gin.HandlerFunc,
	limiters RateLimiters,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: request id, logging, recovery y JSON content-type.
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/api/auth")
	auth.POST("/register", userH.Register)
	auth.POST("/login", userH.Login)
	auth.POST("/send-otp", RateLimit(limiters.SendOTP, service.SendOTPPolicy), userH.SendOTP)
	auth.POST("/verify-otp", RateLimit(limiters.VerifyOTP, service.VerifyOTPPolicy), userH.VerifyOTP)
	auth.POST("/forgot-password", RateLimit(limiters.ForgotPassword, service.ForgotPasswordPolicy), userH.ForgotPassword)
	auth.PUT("/reset-password", userH.ResetPassword)
	auth.GET("/healthz", userH.Healthz)

	protected := auth.Group("", authGuard)
	protected.PUT("/update-password", userH.UpdatePassword)
	protected.DELETE("/delete-account", userH.DeleteAccount)
	protected.GET("/me", userH.Me)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestIDFrom(c)),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
