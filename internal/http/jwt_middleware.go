package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devport-api/internal/domain"
	"devport-api/internal/service"
)

const (
	authUserIDKey = "auth_user_id"
	authUserKey   = "auth_user"
)

type authUserLoader interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// AuthGuard valida el bearer token y adjunta el usuario al contexto.
// Un usuario inexistente no corta la cadena: queda solo el id y los handlers responden 404.
func AuthGuard(jwtSvc *service.JWTService, users authUserLoader, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if jwtSvc == nil || users == nil {
			respondFailure(c, http.StatusInternalServerError, serverErrorMessage)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respondFailure(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		token := strings.TrimSpace(header[len("Bearer "):])
		if token == "" {
			respondFailure(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		userID, err := jwtSvc.Validate(token)
		if err != nil {
			logger.Debug("token rejected", zap.Error(err), zap.String("request_id", requestIDFrom(c)))
			respondFailure(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set(authUserIDKey, userID)
		user, err := users.GetUser(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(authUserKey, user.Public())
		case errors.Is(err, service.ErrUserNotFound):
		default:
			logger.Error("load auth user failed", zap.Error(err), zap.String("request_id", requestIDFrom(c)))
			respondFailure(c, http.StatusInternalServerError, serverErrorMessage)
			return
		}
		c.Next()
	}
}

// GetAuthUserID obtiene el id del token validado.
func GetAuthUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(authUserIDKey)
	return userID, userID != ""
}

// GetAuthUser obtiene el usuario cargado por AuthGuard, sin credenciales.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
