// Package auth verifies bearer tokens and exposes the request principal.
// Token issuance (login, refresh, TTL policy) lives in the external auth
// service; this package only consumes its HS256 tokens.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/teamplan/planboard/internal/roles"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	Sub  string
	Role roles.Role
}

// RequireAuth ensures the request carries a valid bearer token and stores
// the principal in the gin context for downstream handlers.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization required"})
			return
		}

		principal, err := verifyToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// FromContext returns the principal stored by RequireAuth.
func FromContext(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

// MintToken signs a short-lived HS256 token carrying the subject and role
// claims. Used by tests and local tooling; production tokens come from the
// auth service.
func MintToken(secret, sub string, role roles.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func verifyToken(secret, raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Principal{}, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	rawRole, _ := claims["role"].(string)
	role, ok := roles.Parse(rawRole)
	if !ok {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	return Principal{Sub: sub, Role: role}, nil
}

func extractToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
