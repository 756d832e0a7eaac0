package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrCacheDecode = errors.New("cache value could not be decoded")
)

// RedisCacheRepository stores one JSON document per key. Used by the Redis index
// store and by idempotent replays.
type RedisCacheRepository struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
		tracer: otel.Tracer("redis"),
	}
}

func (r *RedisCacheRepository) start(ctx context.Context, op, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("cache.key", key))
	return r.tracer.Start(ctx, "redis."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Get decodes the value at key into dest. A missing key is ErrCacheMiss, a value
// that is not valid JSON for dest is ErrCacheDecode.
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	ctx, span := r.start(ctx, "Get", key)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.String("cache.result", "miss"))
		return ErrCacheMiss
	}
	if err != nil {
		return spanError(span, fmt.Errorf("redis get %s: %w", key, err))
	}

	span.SetAttributes(attribute.String("cache.result", "hit"), attribute.Int("cache.bytes", len(data)))
	if err := json.Unmarshal(data, dest); err != nil {
		return spanError(span, fmt.Errorf("%w: %v", ErrCacheDecode, err))
	}
	return nil
}

// Set writes value as JSON. A zero ttl keeps the key until deleted.
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, span := r.start(ctx, "Set", key, attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())))
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		return spanError(span, fmt.Errorf("encode %s: %w", key, err))
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return spanError(span, fmt.Errorf("redis set %s: %w", key, err))
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *RedisCacheRepository) Delete(ctx context.Context, key string) error {
	ctx, span := r.start(ctx, "Delete", key)
	defer span.End()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return spanError(span, fmt.Errorf("redis delete %s: %w", key, err))
	}
	return nil
}
