package api

import (
	"log"
	"time"

	"github.com/blockpi/backend/internal/api/handlers"
	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/middleware"
	"github.com/blockpi/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// SetupRoutes configures all API routes. db, st and ch may be nil; the
// affected routes then answer 503 or skip caching.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, st *store.Store, ch *cache.Cache, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	window := time.Duration(cfg.SimulateRateLimitSeconds) * time.Second

	// MCP tool bridge
	router.GET("/sse", handlers.ToolEvents)
	router.POST("/tools/:tool_name", middleware.RateLimit(ch, "tools", window), handlers.CallTool(ch, cfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.POST("/simulate", middleware.RateLimit(ch, "simulate", window), handlers.Simulate(st, ch, cfg))
		v1.GET("/simulate/ws", handlers.HandleSimulationWebSocket(cfg))
		v1.GET("/pi_experiment", handlers.PiExperiment(ch))
		v1.GET("/feed/ws", handlers.HandleFeedWebSocket(cfg))

		results := v1.Group("/results")
		{
			results.GET("", handlers.ListResults(st))
			results.GET("/:id", handlers.GetResult(st))
			results.GET("/:id/export", handlers.ExportResult(st))
			results.GET("/:id/sound", handlers.ResultSound(st, cfg))
		}

		v1.POST("/admin/login", handlers.AdminLogin(db, cfg))
		adminGroup := v1.Group("/admin", middleware.RequireAdmin(cfg))
		{
			adminGroup.DELETE("/results/:id", handlers.AdminDeleteResult(db, st, ch))
			adminGroup.POST("/cache/purge", handlers.AdminPurgeCache(db, ch))
			adminGroup.GET("/audit", handlers.GetAdminAuditLogs(db))
		}
	}
}
