package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/menuwise/backend/internal/types"
)

// Context keys set by the auth middlewares.
const (
	IdentityKey  = "identity"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		if !authenticate(c, validator, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware lets guests through. A request that does carry a
// token must carry a valid one.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !authenticate(c, validator, authHeader) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator, authHeader string) bool {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		return false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return false
	}

	// Store user info in context
	c.Set(IdentityKey, &types.Identity{UserID: claims.UserID, Email: claims.Email})
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	return true
}

// GetIdentity returns the authenticated caller, or nil for a guest.
func GetIdentity(c *gin.Context) *types.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*types.Identity)
	return identity
}
