package handlers

import (
	"log"
	"net/http"

	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/experiment"
	"github.com/gin-gonic/gin"
)

// PiExperiment returns collision counts for the classic mass ratios
func PiExperiment(ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, hit, err := experiment.Cached(c.Request.Context(), ch)
		if err != nil {
			log.Printf("[SIM] pi experiment failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Experiment failed")
			return
		}

		if hit {
			c.Header("X-Cache", "HIT")
		} else {
			c.Header("X-Cache", "MISS")
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "results": rows})
	}
}
