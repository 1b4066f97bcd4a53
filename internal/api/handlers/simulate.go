package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/render"
	"github.com/blockpi/backend/internal/sim"
	"github.com/blockpi/backend/internal/store"
	"github.com/blockpi/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// SimulateResponse is the body returned by POST /simulate.
type SimulateResponse struct {
	Status          string               `json:"status"`
	CollisionCount  int                  `json:"collision_count"`
	AnimationData   []string             `json:"animation_data"`
	PiApproximation *float64             `json:"pi_approximation"`
	HitEventCap     bool                 `json:"hit_event_cap"`
	Events          []sim.CollisionEvent `json:"events"`
	ResultID        string               `json:"result_id,omitempty"`
}

// Simulate runs one simulation and returns rendered frames. Unsaved runs are
// served from the cache when the same parameters were seen recently.
func Simulate(st *store.Store, ch *cache.Cache, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SimulateRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		p, err := req.Params(cfg)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx := c.Request.Context()
		n := frameCount(cfg, p)
		key := cache.SimulationKey(p, n)

		if !req.Save {
			var cached SimulateResponse
			if err := ch.GetJSON(ctx, key, &cached); err == nil {
				c.Header("X-Cache", "HIT")
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		res, err := sim.Simulate(p)
		if err != nil {
			if isInputError(err) {
				respondError(c, http.StatusBadRequest, err.Error())
				return
			}
			log.Printf("[SIM] simulation failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Simulation failed")
			return
		}

		frames, err := render.Frames(res, n)
		if err != nil {
			log.Printf("[SIM] frame rendering failed: %v", err)
			respondError(c, http.StatusInternalServerError, "Rendering failed")
			return
		}

		resp := SimulateResponse{
			Status:          "success",
			CollisionCount:  res.CollisionCount,
			AnimationData:   frames,
			PiApproximation: piPointer(res.CollisionCount, p.M1, p.M2),
			HitEventCap:     res.HitEventCap,
			Events:          res.Events,
		}
		if err := ch.SetJSON(ctx, key, resp); err != nil {
			log.Printf("[CACHE] %v", err)
		}

		if req.Save {
			id, err := saveResult(ctx, st, ch, res)
			if errors.Is(err, store.ErrUnavailable) {
				respondError(c, http.StatusServiceUnavailable, "Result storage is not available")
				return
			}
			if err != nil {
				log.Printf("[DB] %v", err)
				respondError(c, http.StatusInternalServerError, "Failed to save result")
				return
			}
			resp.ResultID = id
		}

		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, resp)
	}
}

// saveResult persists res and announces it on the feed channel.
func saveResult(ctx context.Context, st *store.Store, ch *cache.Cache, res sim.Result) (string, error) {
	row, err := store.NewResult(res)
	if err != nil {
		return "", err
	}
	if err := st.Save(ctx, row); err != nil {
		return "", err
	}
	log.Printf("[SIM] saved result %s (m1=%g m2=%g collisions=%d)", row.PublicID, row.M1, row.M2, row.CollisionCount)

	evt := ws.SimulationEvent{
		Type:            "simulation_saved",
		ResultID:        row.PublicID,
		M1:              row.M1,
		M2:              row.M2,
		CollisionCount:  row.CollisionCount,
		PiApproximation: piPointer(row.CollisionCount, row.M1, row.M2),
		CreatedAt:       row.CreatedAt,
	}
	if err := ws.PublishSimulationEvent(ctx, ch.Client(), evt); err != nil {
		log.Printf("[WS] %v", err)
	}
	return row.PublicID, nil
}
