package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devport-api/internal/domain"
	"devport-api/internal/service"
)

type stubUserLoader struct {
	user domain.User
	err  error
}

func (s stubUserLoader) GetUser(_ context.Context, _ string) (domain.User, error) {
	return s.user, s.err
}

func newGuardedRouter(jwtSvc *service.JWTService, loader authUserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthGuard(jwtSvc, loader, zap.NewNop()), func(c *gin.Context) {
		userID, _ := GetAuthUserID(c)
		user, ok := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"uid": userID, "loaded": ok, "hash": user.PasswordHash})
	})
	return r
}

func serveGuarded(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthGuard_AttachesUser(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	token, err := jwtSvc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := newGuardedRouter(jwtSvc, stubUserLoader{user: domain.User{ID: "u1", PasswordHash: "$2a$hash"}})

	rec := serveGuarded(r, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"hash":"","loaded":true,"uid":"u1"}` {
		t.Fatalf("expected stripped user attached, got %s", body)
	}
}

func TestAuthGuard_MissingUserStillPasses(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	token, _ := jwtSvc.Issue("gone")
	r := newGuardedRouter(jwtSvc, stubUserLoader{err: service.ErrUserNotFound})

	rec := serveGuarded(r, "Bearer "+token)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"hash":"","loaded":false,"uid":"gone"}` {
		t.Fatalf("expected id attached without user, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthGuard_Rejections(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	foreign, _ := service.NewJWTService("other", time.Hour).Issue("u1")
	r := newGuardedRouter(jwtSvc, stubUserLoader{user: domain.User{ID: "u1"}})

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", `{"error":"Not authorized, no token","success":false}`},
		{"basic scheme", "Basic dXNlcjpwYXNz", `{"error":"Not authorized, no token","success":false}`},
		{"empty bearer", "Bearer ", `{"error":"Not authorized, no token","success":false}`},
		{"garbage", "Bearer not-a-jwt", `{"error":"Not authorized, token failed","success":false}`},
		{"foreign signature", "Bearer " + foreign, `{"error":"Not authorized, token failed","success":false}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveGuarded(r, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Body.String() != tc.want {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestAuthGuard_StoreFailure(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	token, _ := jwtSvc.Issue("u1")
	r := newGuardedRouter(jwtSvc, stubUserLoader{err: errors.New("connection reset")})

	rec := serveGuarded(r, "Bearer "+token)
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != `{"error":"Server Error","success":false}` {
		t.Fatalf("expected generic 500, got %d %s", rec.Code, rec.Body.String())
	}
}
