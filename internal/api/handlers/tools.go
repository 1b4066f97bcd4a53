package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/experiment"
	"github.com/blockpi/backend/internal/sim"
	"github.com/gin-gonic/gin"
)

// ToolEvents keeps an event stream open for MCP clients
func ToolEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("connected", gin.H{})
	c.Writer.Flush()
	log.Printf("[MCP] client %s connected to event stream", c.ClientIP())

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			log.Printf("[MCP] client %s disconnected from event stream", c.ClientIP())
			return
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"time": time.Now().Unix()})
			c.Writer.Flush()
		}
	}
}

// CallTool runs a named tool and returns its JSON result
func CallTool(ch *cache.Cache, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("tool_name")

		switch name {
		case "run_simulation":
			var req SimulateRequest
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tool arguments"})
				return
			}
			p, err := req.Params(cfg)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res, err := sim.Simulate(p)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status":           "success",
				"collision_count":  res.CollisionCount,
				"pi_approximation": piPointer(res.CollisionCount, p.M1, p.M2),
				"hit_event_cap":    res.HitEventCap,
				"events":           res.Events,
			})

		case "pi_experiment":
			rows, _, err := experiment.Cached(c.Request.Context(), ch)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "success", "results": rows})

		default:
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Tool '%s' not found", name)})
		}
	}
}
