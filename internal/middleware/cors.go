package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/blockpi/backend/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Disposition", "X-Cache",
		},
		MaxAge: 12 * time.Hour,
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
		}
	} else {
		corsConfig.AllowOrigins = allowedOrigins(cfg)
		log.Printf("[CORS] Production allowed origins: %v", corsConfig.AllowOrigins)
	}
	if cfg.FrontendURL != "" && !contains(corsConfig.AllowOrigins, cfg.FrontendURL) {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, cfg.FrontendURL)
	}
	corsConfig.AllowCredentials = true

	return cors.New(corsConfig)
}

// WebSocketOriginAllowed reports whether a WebSocket upgrade from origin may proceed.
func WebSocketOriginAllowed(cfg *config.Config, origin string) bool {
	if origin == "" {
		// Non-browser clients (CLI tools, MCP bridges) send no Origin.
		return true
	}
	if cfg.Environment == "development" {
		return strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")
	}
	return contains(allowedOrigins(cfg), origin)
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{}
	}
	return []string{cfg.FrontendURL}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
