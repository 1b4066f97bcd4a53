package experiment

import (
	"context"
	"log"
	"time"

	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
)

// StartWarmer keeps the π table in Redis fresh. It warms once immediately,
// then on every tick, and blocks until ctx is done.
func StartWarmer(ctx context.Context, c *cache.Cache, cfg *config.Config) {
	if c.Client() == nil {
		log.Println("[WARMER] Redis client not set; experiment warmer not started")
		return
	}

	minutes := 30
	if cfg != nil && cfg.ExperimentWarmMinutes > 0 {
		minutes = cfg.ExperimentWarmMinutes
	}
	interval := time.Duration(minutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[WARMER] Starting experiment warmer (interval %v)", interval)
	warmOnce(ctx, c)

	for {
		select {
		case <-ctx.Done():
			log.Println("[WARMER] Worker stopped")
			return
		case <-ticker.C:
			warmOnce(ctx, c)
		}
	}
}

func warmOnce(ctx context.Context, c *cache.Cache) error {
	start := time.Now()
	rows, err := Run(ctx, DefaultRatios, -1)
	if err != nil {
		log.Printf("[WARMER] sweep failed: %v", err)
		return err
	}
	if err := c.SetJSON(ctx, cache.ExperimentKey, rows); err != nil {
		log.Printf("[WARMER] store failed: %v", err)
		return err
	}
	log.Printf("[WARMER] refreshed %d ratios in %v", len(rows), time.Since(start))
	return nil
}
