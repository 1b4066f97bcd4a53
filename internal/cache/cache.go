package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/blockpi/backend/internal/sim"
	"github.com/redis/go-redis/v9"
)

const (
	ExperimentKey   = "pi_experiment:v1"
	simulationScope = "sim:v1:"
	rateLimitScope  = "ratelimit:"
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache: miss")

// Cache stores JSON-encoded simulation output in Redis.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps rdb. A nil client gives a cache that always misses.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Client exposes the underlying Redis client, or nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// GetJSON decodes the value stored at key into dst.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) error {
	if !c.enabled() {
		return ErrMiss
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v at key with the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Allow reports whether key may proceed, admitting one call per window.
// It fails open when Redis is missing or erroring.
func (c *Cache) Allow(ctx context.Context, key string, window time.Duration) bool {
	if !c.enabled() || window <= 0 {
		return true
	}
	ok, err := c.rdb.SetNX(ctx, rateLimitScope+key, 1, window).Result()
	if err != nil {
		log.Printf("[CACHE] rate limit check failed for %s: %v", key, err)
		return true
	}
	return ok
}

// Purge drops every cached simulation and the experiment table. Rate limit
// keys are left alone.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}

	var removed int64
	iter := c.rdb.Scan(ctx, 0, simulationScope+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("cache purge %s: %w", iter.Val(), err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache purge scan: %w", err)
	}

	n, err := c.rdb.Del(ctx, ExperimentKey).Result()
	if err != nil {
		return removed, fmt.Errorf("cache purge %s: %w", ExperimentKey, err)
	}
	removed += n

	log.Printf("[CACHE] purged %d keys", removed)
	return removed, nil
}

// SimulationKey derives a stable key from the run parameters and the number
// of rendered frames.
func SimulationKey(p sim.Params, frames int) string {
	raw, _ := json.Marshal(struct {
		P      sim.Params `json:"p"`
		Frames int        `json:"frames"`
	}{p, frames})
	sum := sha256.Sum256(raw)
	return simulationScope + hex.EncodeToString(sum[:])
}
