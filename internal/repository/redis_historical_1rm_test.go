package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisHistorical1RMStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisHistorical1RMStore(NewRedisCacheRepository(client), "historical_1rm"), mr
}

func TestRedisHistorical1RMStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	idx, err := store.Load(ctx)
	require.NoError(t, err, "a missing key is an empty index")
	assert.Empty(t, idx)

	w1 := "w1"
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, domain.Historical1RMIndex{
		"bench": {Value: 215.83, UpdatedAt: at, SourceWorkoutID: &w1},
		"squat": {Value: 180, UpdatedAt: at},
	}))

	assert.Equal(t, time.Duration(0), mr.TTL("historical_1rm"), "index must not expire")

	idx, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, idx, 2)
	assert.True(t, idx["bench"].IsFrom("w1"))
	assert.True(t, idx["squat"].IsManual())
	assert.True(t, idx["bench"].UpdatedAt.Equal(at))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("historical_1rm"))
}

func TestRedisHistorical1RMStore_Corrupt(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("historical_1rm", "definitely not json"))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func TestRedisHistorical1RMStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCorruptIndex)
}
