package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/token"
)

// AuthMiddleware resolves the bearer token to a user identity and stores it
// on the request context.
func AuthMiddleware(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		session, err := issuer.VerifySession(bearerToken[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", session.UserID)
		c.Set("login", session.Login)
		c.Next()
	}
}
