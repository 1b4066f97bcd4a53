package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/sim"
	"github.com/blockpi/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

var errMassRatio = errors.New("mass ratio exceeds server limit")

// SimulateRequest is the body of POST /simulate and of "run" socket
// messages. Missing fields take the classic defaults.
type SimulateRequest struct {
	M1        *float64 `json:"m1"`
	M2        *float64 `json:"m2"`
	V1        *float64 `json:"v1"`
	V2        *float64 `json:"v2"`
	TotalTime *float64 `json:"total_time"`
	Save      bool     `json:"save"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Params resolves defaults and checks server limits.
func (r SimulateRequest) Params(cfg *config.Config) (sim.Params, error) {
	p := sim.DefaultParams(orDefault(r.M1, 100), orDefault(r.M2, 1), orDefault(r.V1, -1))
	p.V2 = orDefault(r.V2, 0)
	p.TotalTime = orDefault(r.TotalTime, cfg.DefaultTotalTime)
	if cfg.DefaultFPS > 0 {
		p.FPS = cfg.DefaultFPS
	}

	if !(p.M1 > 0) || !(p.M2 > 0) {
		return p, sim.ErrInvalidMass
	}
	if cfg.MaxMassRatio > 0 && p.M1/p.M2 > cfg.MaxMassRatio {
		return p, fmt.Errorf("%w: %g > %g", errMassRatio, p.M1/p.M2, cfg.MaxMassRatio)
	}
	return p, nil
}

// ParamsBuilder decodes socket "run" payloads with the same rules as POST /simulate.
func ParamsBuilder(cfg *config.Config) ws.ParamsBuilder {
	return func(data json.RawMessage) (sim.Params, error) {
		var req SimulateRequest
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				return sim.Params{}, fmt.Errorf("invalid run data: %w", err)
			}
		}
		return req.Params(cfg)
	}
}

// frameCount caps the number of rendered frames for web responses.
func frameCount(cfg *config.Config, p sim.Params) int {
	n := sim.FrameCount(p.TotalTime, p.FPS)
	if cfg.MaxFrames > 0 && n > cfg.MaxFrames {
		n = cfg.MaxFrames
	}
	return n
}

func piPointer(count int, m1, m2 float64) *float64 {
	if pi, ok := sim.PiApproximation(count, m1, m2); ok {
		return &pi
	}
	return nil
}

func isInputError(err error) bool {
	return errors.Is(err, errMassRatio) ||
		errors.Is(err, sim.ErrInvalidMass) ||
		errors.Is(err, sim.ErrInvalidWidth) ||
		errors.Is(err, sim.ErrInvalidTotalTime) ||
		errors.Is(err, sim.ErrNotFinite) ||
		errors.Is(err, sim.ErrOverlap)
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}
