package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/sim"
)

// DefaultRatios are the mass ratios of the classic π table.
var DefaultRatios = []float64{1, 1e2, 1e4, 1e6}

// Row is one line of the π table.
type Row struct {
	Ratio       float64 `json:"ratio"`
	Collisions  int     `json:"collisions"`
	PiRelation  string  `json:"pi_relation"`
	HitEventCap bool    `json:"hit_event_cap"`
}

// TotalTimeFor gives heavy ratios more simulated time to finish separating.
func TotalTimeFor(ratio float64) float64 {
	if ratio <= 1e4 {
		return 50
	}
	return 500
}

// DigitRatios returns 100^0 .. 100^digits.
func DigitRatios(digits int) []float64 {
	if digits < 0 {
		digits = 0
	}
	out := make([]float64, 0, digits+1)
	for k := 0; k <= digits; k++ {
		out = append(out, math.Pow(100, float64(k)))
	}
	return out
}

// Run simulates each ratio with m2 = 1 and block 1 moving at v1. Ratios run
// concurrently, one simulator per goroutine; rows keep the input order.
func Run(ctx context.Context, ratios []float64, v1 float64) ([]Row, error) {
	rows := make([]Row, len(ratios))
	errs := make([]error, len(ratios))

	var wg sync.WaitGroup
	for i, ratio := range ratios {
		wg.Add(1)
		go func(i int, ratio float64) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}

			p := sim.DefaultParams(ratio, 1, v1)
			p.TotalTime = TotalTimeFor(ratio)
			res, err := sim.Simulate(p)
			if err != nil {
				errs[i] = fmt.Errorf("ratio %g: %w", ratio, err)
				return
			}
			rows[i] = Row{
				Ratio:       ratio,
				Collisions:  res.CollisionCount,
				PiRelation:  sim.PiRelation(res.CollisionCount, ratio),
				HitEventCap: res.HitEventCap,
			}
		}(i, ratio)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Cached returns the default table from c, computing and storing it on a miss.
// The boolean reports a cache hit.
func Cached(ctx context.Context, c *cache.Cache) ([]Row, bool, error) {
	var rows []Row
	if err := c.GetJSON(ctx, cache.ExperimentKey, &rows); err == nil && len(rows) > 0 {
		return rows, true, nil
	}

	rows, err := Run(ctx, DefaultRatios, -1)
	if err != nil {
		return nil, false, err
	}
	_ = c.SetJSON(ctx, cache.ExperimentKey, rows)
	return rows, false, nil
}
