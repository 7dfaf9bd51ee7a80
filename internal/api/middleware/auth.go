package middleware

import (
	"net/http"

	"stream-service/internal/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	gate *auth.Gate
}

func NewAuthMiddleware(gate *auth.Gate) *AuthMiddleware {
	return &AuthMiddleware{
		gate: gate,
	}
}

// RequireAuth rejects the request unless it carries a valid bearer
// token. On success the resolved user id is stored in the gin context
// under "user_id".
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := auth.ExtractCredential("", c.GetHeader("Authorization"))
		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			c.Abort()
			return
		}

		userID, err := am.gate.Authenticate(c.Request.Context(), credential)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
