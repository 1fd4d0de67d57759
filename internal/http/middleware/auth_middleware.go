package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/rakshasetu/domain"
)

// Context keys set by AuthMiddleware
const (
	IdentityKey = "identity"
	TokenIDKey  = "token_id"
)

// AuthMiddleware creates authentication middleware. Tokens are verified from
// their signature alone.
func AuthMiddleware(tokenSvc domain.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || strings.TrimSpace(tokenParts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimSpace(tokenParts[1]))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(IdentityKey, claims.Identity)
		c.Set(TokenIDKey, claims.ID)
		c.Next()
	}
}

// IdentityFrom returns the identity placed on the context by AuthMiddleware
func IdentityFrom(c *gin.Context) (string, bool) {
	identity := c.GetString(IdentityKey)
	return identity, identity != ""
}
