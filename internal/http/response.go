package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devport-api/internal/service"
)

const serverErrorMessage = "Server Error"

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// respondError traduce errores de servicio a status y mensaje; lo no reconocido es 500 y solo se loguea.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		respondFailure(c, http.StatusBadRequest, vErr.Message)
		return
	}

	status, message := http.StatusInternalServerError, serverErrorMessage
	switch {
	case errors.Is(err, service.ErrUserExists):
		status, message = http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrEmailTaken):
		status, message = http.StatusBadRequest, "Email already registered"
	case errors.Is(err, service.ErrUsernameTaken):
		status, message = http.StatusBadRequest, "Username is already taken"
	case errors.Is(err, service.ErrInvalidEmail):
		status, message = http.StatusBadRequest, "Invalid email format"
	case errors.Is(err, service.ErrEmailNotVerified):
		status, message = http.StatusBadRequest, "Email not verified. Please verify OTP."
	case errors.Is(err, service.ErrOTPNotFound):
		status, message = http.StatusBadRequest, "OTP not found"
	case errors.Is(err, service.ErrOTPExpired):
		status, message = http.StatusBadRequest, "OTP expired"
	case errors.Is(err, service.ErrOTPInvalid):
		status, message = http.StatusBadRequest, "Invalid OTP"
	case errors.Is(err, service.ErrResetInvalid):
		status, message = http.StatusBadRequest, "Invalid or expired reset code"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrIncorrectPassword):
		status, message = http.StatusUnauthorized, "Incorrect current password"
	case errors.Is(err, service.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	default:
		logger.Error(op+" failed", zap.Error(err), zap.String("request_id", requestIDFrom(c)))
	}
	respondFailure(c, status, message)
}
