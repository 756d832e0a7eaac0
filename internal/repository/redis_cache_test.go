package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRepository(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCacheRepository(client)

	var out map[string]int
	assert.ErrorIs(t, cache.Get(ctx, "k", &out), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, cache.Get(ctx, "k", &out))
	assert.Equal(t, map[string]int{"a": 1}, out)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, mr.Set("k", "[1,2"))
	assert.ErrorIs(t, cache.Get(ctx, "k", &out), ErrCacheDecode)

	require.NoError(t, cache.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
	assert.NoError(t, cache.Delete(ctx, "k"))

	mr.Close()
	err := cache.Get(ctx, "k", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
