package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blockpi/backend/internal/cache"
	"github.com/gin-gonic/gin"
)

// RateLimit admits one request per client IP per window for the wrapped route.
func RateLimit(c *cache.Cache, scope string, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !c.Allow(ctx.Request.Context(), scope+":"+ctx.ClientIP(), window) {
			ctx.Header("Retry-After", retryAfter(window))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "too many requests, slow down",
			})
			return
		}
		ctx.Next()
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
