package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blockpi/backend/internal/sim"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, time.Minute), mr
}

type payload struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

func TestGetSetJSON(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var out payload
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &out), ErrMiss)

	require.NoError(t, c.SetJSON(ctx, "k", payload{Count: 31, Name: "hundred"}))
	require.NoError(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, payload{Count: 31, Name: "hundred"}, out)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &out), ErrMiss)
}

func TestNilCacheMisses(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	var out payload
	assert.NoError(t, c.SetJSON(ctx, "k", payload{}))
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &out), ErrMiss)
	assert.True(t, c.Allow(ctx, "ip", time.Second))
	n, err := c.Purge(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestAllow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.True(t, c.Allow(ctx, "10.0.0.1", time.Second))
	assert.False(t, c.Allow(ctx, "10.0.0.1", time.Second))
	assert.True(t, c.Allow(ctx, "10.0.0.2", time.Second))

	mr.FastForward(2 * time.Second)
	assert.True(t, c.Allow(ctx, "10.0.0.1", time.Second))
}

func TestPurgeKeepsRateLimits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	p := sim.DefaultParams(100, 1, -1)
	require.NoError(t, c.SetJSON(ctx, SimulationKey(p, 30), payload{Count: 31}))
	require.NoError(t, c.SetJSON(ctx, ExperimentKey, []payload{{Count: 3}}))
	c.Allow(ctx, "10.0.0.1", time.Minute)

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists(ExperimentKey))
	assert.True(t, mr.Exists(rateLimitScope+"10.0.0.1"))
}

func TestSimulationKey(t *testing.T) {
	a := sim.DefaultParams(100, 1, -1)
	b := sim.DefaultParams(100, 1, -1)
	assert.Equal(t, SimulationKey(a, 30), SimulationKey(b, 30))
	assert.NotEqual(t, SimulationKey(a, 30), SimulationKey(a, 10))

	b.V2 = 0.5
	assert.NotEqual(t, SimulationKey(a, 30), SimulationKey(b, 30))
}
