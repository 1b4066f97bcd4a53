package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/models"
	"github.com/blockpi/backend/internal/render"
	"github.com/blockpi/backend/internal/sim"
	"github.com/blockpi/backend/internal/store"
	"github.com/gin-gonic/gin"
)

// ResultExport is the downloadable form of a saved run.
type ResultExport struct {
	ID              string               `json:"id"`
	MassRatio       float64              `json:"mass_ratio"`
	M1              float64              `json:"m1"`
	M2              float64              `json:"m2"`
	V1Initial       float64              `json:"v1_initial"`
	V2Initial       float64              `json:"v2_initial"`
	TotalTime       float64              `json:"total_time"`
	CollisionCount  int                  `json:"collision_count"`
	PiApproximation *float64             `json:"pi_approximation"`
	HitEventCap     bool                 `json:"hit_event_cap"`
	Events          []sim.CollisionEvent `json:"events"`
	Trajectory      []sim.Sample         `json:"trajectory"`
	StateSpace      []sim.PhasePoint     `json:"state_space"`
}

// ListResults returns the most recent saved runs
func ListResults(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit > 100 {
			limit = 100
		}

		results, err := st.Recent(c.Request.Context(), limit)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
	}
}

// GetResult returns one saved run with its events
func GetResult(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := st.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			storeError(c, err)
			return
		}
		res.Trajectory = nil
		c.JSON(http.StatusOK, gin.H{"status": "success", "result": res})
	}
}

// ExportResult returns the full run as a JSON attachment
func ExportResult(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, decoded, ok := loadDecoded(c, st)
		if !ok {
			return
		}

		export := ResultExport{
			ID:              row.PublicID,
			MassRatio:       row.M1 / row.M2,
			M1:              row.M1,
			M2:              row.M2,
			V1Initial:       row.V1Initial,
			V2Initial:       row.V2Initial,
			TotalTime:       row.TotalTime,
			CollisionCount:  row.CollisionCount,
			PiApproximation: piPointer(row.CollisionCount, row.M1, row.M2),
			HitEventCap:     row.HitEventCap,
			Events:          decoded.Events,
			Trajectory:      decoded.Trajectory,
			StateSpace:      sim.PhasePath(decoded),
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="simulation-%s.json"`, row.PublicID))
		c.JSON(http.StatusOK, export)
	}
}

// ResultSound returns the collision click track as WAV
func ResultSound(st *store.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, decoded, ok := loadDecoded(c, st)
		if !ok {
			return
		}

		wav, err := render.ClickTrackWAV(decoded, cfg.SoundMaxSeconds, 1)
		if err != nil {
			log.Printf("[SIM] click track for %s failed: %v", row.PublicID, err)
			respondError(c, http.StatusInternalServerError, "Failed to render sound")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="simulation-%s.wav"`, row.PublicID))
		c.Data(http.StatusOK, "audio/wav", wav)
	}
}

func loadDecoded(c *gin.Context, st *store.Store) (*models.SimulationResult, sim.Result, bool) {
	row, err := st.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return nil, sim.Result{}, false
	}
	decoded, err := store.Decode(row)
	if err != nil {
		log.Printf("[DB] corrupt result %s: %v", row.PublicID, err)
		respondError(c, http.StatusInternalServerError, "Stored result is unreadable")
		return nil, sim.Result{}, false
	}
	return row, decoded, true
}

func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "Result not found")
	case errors.Is(err, store.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, "Result storage is not available")
	default:
		log.Printf("[DB] %v", err)
		respondError(c, http.StatusInternalServerError, "Database error")
	}
}
