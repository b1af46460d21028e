package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestMemoryCache_LazyExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(10, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))

	// Entry stays in the map until a lookup observes it expired.
	now = now.Add(2 * time.Hour)
	assert.Len(t, c.items, 1)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, c.items, "expired entry must be deleted on lookup")
}

func TestMemoryCache_EvictsOldestWhenFull(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(2, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "entry closest to expiry is evicted first")

	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCache_DeleteAbsentKey(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)

	assert.NoError(t, c.Delete(context.Background(), "missing"))
}
