package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "getUsers:abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	value := json.RawMessage(`{"users": [{"id": "u1"}]}`)
	require.NoError(t, c.Set(ctx, "getUsers:abc", value, time.Minute))

	got, err = c.Get(ctx, "getUsers:abc")
	require.NoError(t, err)
	assert.Equal(t, string(value), string(got))
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "getPosts:x", json.RawMessage(`{}`), time.Second))
	mr.FastForward(2 * time.Second)

	got, err := c.Get(ctx, "getPosts:x")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheInvalidateAll(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "getUsers:a", json.RawMessage(`1`), time.Minute))
	require.NoError(t, c.Set(ctx, "getPosts:b", json.RawMessage(`2`), time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))

	for _, key := range []string{"getUsers:a", "getPosts:b"} {
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got, key)
	}
	assert.True(t, mr.Exists("unrelated"))

	// nothing left to delete
	require.NoError(t, c.InvalidateAll(ctx))
}

func TestRedisCacheGeneration(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.InvalidateAll(ctx))
	require.NoError(t, c.InvalidateAll(ctx))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(addr, "")
	assert.Error(t, err)
}
