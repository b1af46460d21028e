package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisFixture(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisCacheFromClient(client, time.Minute)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	_, c := newRedisFixture(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestRedisCache_MissingKeyIsMissNotError(t *testing.T) {
	_, c := newRedisFixture(t)

	_, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, c := newRedisFixture(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	_, c := newRedisFixture(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url", time.Minute)
	assert.Error(t, err)
}
