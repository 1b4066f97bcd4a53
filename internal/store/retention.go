package store

import (
	"context"
	"log"
	"time"

	"github.com/blockpi/backend/internal/config"
)

// StartRetentionWorker periodically deletes results older than the configured
// retention window. It blocks until ctx is done.
func StartRetentionWorker(ctx context.Context, st *Store, cfg *config.Config) {
	if st == nil || cfg == nil || cfg.ResultRetentionDays <= 0 {
		log.Println("[RETENTION] Store or retention window missing; worker not started")
		return
	}

	poll := cfg.RetentionPollMinutes
	if poll <= 0 {
		poll = 60
	}
	interval := time.Duration(poll) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[RETENTION] Starting retention worker (keep %d days, poll every %v)", cfg.ResultRetentionDays, interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("[RETENTION] Worker stopped")
			return
		case <-ticker.C:
			pruneOnce(ctx, st, cfg.ResultRetentionDays, time.Now())
		}
	}
}

func pruneOnce(ctx context.Context, st *Store, days int, now time.Time) int64 {
	cutoff := now.AddDate(0, 0, -days)
	n, err := st.PruneOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[RETENTION] Failed to prune results older than %s: %v", cutoff.Format(time.RFC3339), err)
		return 0
	}
	if n > 0 {
		log.Printf("[RETENTION] Pruned %d results older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n
}
