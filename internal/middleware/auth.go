package middleware

import (
	"net/http"
	"strings"

	"github.com/blockpi/backend/internal/admin"
	"github.com/blockpi/backend/internal/config"
	"github.com/gin-gonic/gin"
)

// RequireAdmin validates a bearer admin token and sets admin_username in context
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing token"})
			return
		}

		claims, err := admin.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			return
		}

		c.Set("admin_username", claims.Username)
		c.Set("admin_roles", claims.Roles)
		c.Next()
	}
}
