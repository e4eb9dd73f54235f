package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/result"
)

const errUnauthorized = "Unauthorized"

// TokenVerifier is the subset of the token service the middleware needs.
type TokenVerifier interface {
	UserIDFromToken(ctx context.Context, token string) result.Result[string]
}

// Auth validates a Bearer access token and sets "userID" in the gin
// context. The response never says why the token was rejected.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		userID := tokens.UserIDFromToken(c.Request.Context(), raw)
		if !userID.IsOk() || userID.Value() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("userID", userID.Value())
		c.Next()
	}
}
