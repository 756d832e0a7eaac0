package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// RedisHistorical1RMStore keeps the historical 1RM index as one JSON value under a single key:
//
//	{"<exerciseId>": {"historical_1rm": 215.8, "updated_at": "...", "source_workout_id": "..."|null}}
type RedisHistorical1RMStore struct {
	cache *RedisCacheRepository
	key   string
}

func NewRedisHistorical1RMStore(cache *RedisCacheRepository, key string) *RedisHistorical1RMStore {
	return &RedisHistorical1RMStore{
		cache: cache,
		key:   key,
	}
}

func (r *RedisHistorical1RMStore) Load(ctx context.Context) (domain.Historical1RMIndex, error) {
	idx := domain.Historical1RMIndex{}
	err := r.cache.Get(ctx, r.key, &idx)
	switch {
	case err == nil:
		return idx, nil
	case errors.Is(err, ErrCacheMiss):
		return domain.Historical1RMIndex{}, nil
	case errors.Is(err, ErrCacheDecode):
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIndex, err)
	default:
		return nil, err
	}
}

// Save writes the whole index with no expiry
func (r *RedisHistorical1RMStore) Save(ctx context.Context, idx domain.Historical1RMIndex) error {
	if idx == nil {
		idx = domain.Historical1RMIndex{}
	}
	return r.cache.Set(ctx, r.key, idx, 0)
}

func (r *RedisHistorical1RMStore) Clear(ctx context.Context) error {
	return r.cache.Delete(ctx, r.key)
}
