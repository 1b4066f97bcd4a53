package experiment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blockpi/backend/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaultRatios(t *testing.T) {
	rows, err := Run(context.Background(), DefaultRatios, -1)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	want := []int{3, 31, 314, 3141}
	for i, row := range rows {
		assert.Equal(t, DefaultRatios[i], row.Ratio)
		assert.InDelta(t, want[i], row.Collisions, 1, "ratio %g", row.Ratio)
		assert.False(t, row.HitEventCap)
	}
	assert.Equal(t, "N/A", rows[0].PiRelation)
	assert.Contains(t, rows[1].PiRelation, "× 10^1")
	assert.Contains(t, rows[3].PiRelation, "× 10^3")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, DefaultRatios, -1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTotalTimeFor(t *testing.T) {
	assert.Equal(t, 50.0, TotalTimeFor(1))
	assert.Equal(t, 50.0, TotalTimeFor(1e4))
	assert.Equal(t, 500.0, TotalTimeFor(1e6))
}

func TestDigitRatios(t *testing.T) {
	assert.Equal(t, []float64{1, 100, 10000}, DigitRatios(2))
	assert.Equal(t, []float64{1}, DigitRatios(-3))
}

func TestCachedAndWarm(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	c := cache.New(rdb, time.Hour)
	ctx := context.Background()

	rows, hit, err := Cached(ctx, c)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 4)

	again, hit, err := Cached(ctx, c)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, rows, again)

	mr.Del(cache.ExperimentKey)
	require.NoError(t, warmOnce(ctx, c))
	assert.True(t, mr.Exists(cache.ExperimentKey))
}

func TestCachedWithoutRedis(t *testing.T) {
	rows, hit, err := Cached(context.Background(), cache.New(nil, time.Hour))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 4)
}
