package middleware

import (
	"errors"
	"net/http"
	"strings"

	"repairdesk/internal/config"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
)

var Module = fx.Module("middleware",
	fx.Provide(NewAuthenticator),
)

// Roles issued by the identity provider.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

const (
	contextActorID = "actorID"
	contextRole    = "actorRole"
)

var (
	ErrMissingToken = errors.New("authorization is missing")
	ErrBadScheme    = errors.New("invalid authorization format, expected 'Bearer <token>'")
	ErrNoRole       = errors.New("role not found in token")
)

// Claims carried by access tokens. Tokens are issued elsewhere and only verified here.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(cfg config.Config) *Authenticator {
	return &Authenticator{secret: cfg.JWTSecret}
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func (a *Authenticator) ParseToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Role == "" {
		return nil, ErrNoRole
	}
	return claims, nil
}

// tokenFromRequest tries the access_token cookie first, then the Authorization header.
func tokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, nil
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrBadScheme
	}
	return parts[1], nil
}

// Authenticate rejects requests without a valid token and stores the actor in the context.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}
		claims, err := a.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		c.Set(contextActorID, claims.Subject)
		c.Set(contextRole, claims.Role)
		c.Next()
	}
}

// RequireRole must run after Authenticate. Admin always passes.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(contextRole)
		if role == RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// ActorID returns the token subject of the current request, empty when unauthenticated.
func ActorID(c *gin.Context) string {
	return c.GetString(contextActorID)
}
