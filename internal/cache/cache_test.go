package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
)

type summary struct {
	Total   int     `json:"total"`
	Balance float64 `json:"balance"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "dash:MID-1", summary{Total: 3, Balance: 712}, 0))

	var got summary
	require.NoError(t, c.Get(ctx, "dash:MID-1", &got))
	assert.Equal(t, summary{Total: 3, Balance: 712}, got)

	require.NoError(t, c.Delete(ctx, "dash:MID-1"))
	assert.ErrorIs(t, c.Get(ctx, "dash:MID-1", &got), ErrMiss)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	in := map[string]int{"Pending": 1}
	require.NoError(t, c.Set(ctx, "k", in, 0))
	in["Pending"] = 99

	var out map[string]int
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, 1, out["Pending"])
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, "k", 1, 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
}

func TestNewPicksDriver(t *testing.T) {
	c, err := New(config.CacheConfig{Driver: "memory", TTLSeconds: 5})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)
}
