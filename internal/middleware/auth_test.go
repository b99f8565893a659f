package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"repairdesk/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, secret []byte, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newRouter(auth *Authenticator, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{auth.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, ActorID(c))
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(config.Config{JWTSecret: testSecret})

	expired := validClaims(RoleStaff)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "bad scheme", header: "Token abc", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + sign(t, []byte("other"), jwt.SigningMethodHS256, validClaims(RoleStaff)), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, expired), want: http.StatusUnauthorized},
		{name: "no role", header: "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, validClaims("")), want: http.StatusUnauthorized},
		{name: "header", header: "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, validClaims(RoleStaff)), want: http.StatusOK},
		{name: "cookie", cookie: sign(t, testSecret, jwt.SigningMethodHS256, validClaims(RoleStaff)), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			newRouter(auth).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, w.Code, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Body.String() != "user-1" {
				t.Fatalf("expected actor user-1, got %q", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := NewAuthenticator(config.Config{JWTSecret: testSecret})

	tests := []struct {
		role string
		want int
	}{
		{role: RoleAdmin, want: http.StatusOK},
		{role: RoleManager, want: http.StatusOK},
		{role: RoleStaff, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+sign(t, testSecret, jwt.SigningMethodHS256, validClaims(tt.role)))
			w := httptest.NewRecorder()
			newRouter(auth, RoleManager).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
