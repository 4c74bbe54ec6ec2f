package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore keeps drafts as plain string keys with a sliding TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore builds a Redis backed draft store. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("draftstore: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("medspa.internal.draftstore.redis"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "draftstore.redis.get", trace.WithAttributes(attribute.String("medspa.draft_key", key)))
	defer span.End()

	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("draftstore: redis get: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "draftstore.redis.set", trace.WithAttributes(attribute.String("medspa.draft_key", key)))
	defer span.End()

	if err := s.redis.Set(ctx, key, value, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("draftstore: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "draftstore.redis.remove", trace.WithAttributes(attribute.String("medspa.draft_key", key)))
	defer span.End()

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("draftstore: redis del: %w", err)
	}
	return nil
}
