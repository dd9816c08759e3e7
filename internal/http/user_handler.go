package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devport-api/internal/domain"
	"devport-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de autenticacion y cuenta.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	otpServ  *service.OTPService
	resetSrv *service.PasswordResetService
	jwtServ  *service.JWTService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	otpServ *service.OTPService,
	resetSrv *service.PasswordResetService,
	jwtServ *service.JWTService,
) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		otpServ:  otpServ,
		resetSrv: resetSrv,
		jwtServ:  jwtServ,
	}
}

// Register maneja POST /api/auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrOTPExpired) {
			respondFailure(c, http.StatusBadRequest, "OTP expired. Please request a new one.")
			return
		}
		respondError(c, h.logger, "register", err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

// Login maneja POST /api/auth/login. El campo email acepta tambien el username.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

// SendOTP maneja POST /api/auth/send-otp.
func (h *UserHandler) SendOTP(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.otpServ.Issue(c.Request.Context(), req.Email, req.Username); err != nil {
		respondError(c, h.logger, "send otp", err)
		return
	}
	respondMessage(c, http.StatusOK, "OTP sent successfully")
}

// VerifyOTP maneja POST /api/auth/verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.otpServ.Verify(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, h.logger, "verify otp", err)
		return
	}
	respondMessage(c, http.StatusOK, "OTP verified")
}

// ForgotPassword maneja POST /api/auth/forgot-password. La respuesta no revela si la cuenta existe.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.resetSrv.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "forgot password", err)
		return
	}
	respondMessage(c, http.StatusOK, "Email sent if a user with that email exists.")
}

// ResetPassword maneja PUT /api/auth/reset-password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		ResetCode string `json:"resetCode"`
		Password  string `json:"password"`
	}
	if !h.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.ResetCode) == "" || req.Password == "" {
		respondFailure(c, http.StatusBadRequest, "Please provide email, reset code, and a new password.")
		return
	}

	if err := h.resetSrv.CompleteReset(c.Request.Context(), req.Email, req.ResetCode, req.Password); err != nil {
		respondError(c, h.logger, "reset password", err)
		return
	}
	respondMessage(c, http.StatusOK, "Password reset successful")
}

// UpdatePassword maneja PUT /api/auth/update-password (requiere AuthGuard).
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		respondFailure(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !h.bind(c, &req) {
		return
	}

	if err := h.userServ.UpdatePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, "update password", err)
		return
	}
	respondMessage(c, http.StatusOK, "Password updated successfully")
}

// DeleteAccount maneja DELETE /api/auth/delete-account (requiere AuthGuard).
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		respondFailure(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	if err := h.userServ.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, "delete account", err)
		return
	}
	respondMessage(c, http.StatusOK, "Account deleted successfully.")
}

// Me maneja GET /api/auth/me (requiere AuthGuard).
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		respondFailure(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// Healthz maneja GET /api/auth/healthz.
func (h *UserHandler) Healthz(c *gin.Context) {
	respondMessage(c, http.StatusOK, "ok")
}

func (h *UserHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err), zap.String("path", c.FullPath()))
		respondFailure(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user domain.User) {
	token, err := h.jwtServ.Issue(user.ID)
	if err != nil {
		respondError(c, h.logger, "issue token", err)
		return
	}
	c.JSON(status, gin.H{"success": true, "token": token, "user": user.Public()})
}
