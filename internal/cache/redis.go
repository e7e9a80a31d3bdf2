package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
)

const scanBatch = 200

// Redis stores JSON-encoded values under a key prefix so that every API
// instance shares one view.
type Redis[V any] struct {
	client *redis.Client
	name   string
	prefix string
	ttl    time.Duration
	logger *logger.Logger
}

var _ Cache[string, int] = (*Redis[int])(nil)

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return c, nil
}

// NewRedis creates a cache named name whose keys live under "skillbridge:<name>:".
func NewRedis[V any](client *redis.Client, name string, ttl time.Duration, log *logger.Logger) *Redis[V] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Redis[V]{
		client: client,
		name:   name,
		prefix: fmt.Sprintf("skillbridge:%s:", name),
		ttl:    ttl,
		logger: log.With(zap.String("cache", name)),
	}
}

// Get decodes the JSON value stored for key. Redis errors count as misses.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		metrics.IncCacheRequest(r.name, resultMiss)
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logger.Warn("redis value decode failed", zap.String("key", key), zap.Error(err))
		metrics.IncCacheRequest(r.name, resultMiss)
		return zero, false
	}
	metrics.IncCacheRequest(r.name, resultHit)
	return v, true
}

// Set stores value as JSON under key with the cache TTL.
func (r *Redis[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("redis value encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes key.
func (r *Redis[V]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Warn("redis delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge removes every key under the prefix.
func (r *Redis[V]) Purge(ctx context.Context) {
	err := r.scan(ctx, func(keys []string) error {
		return r.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		r.logger.Warn("redis purge failed", zap.Error(err))
	}
}

// Len counts keys under the prefix.
func (r *Redis[V]) Len(ctx context.Context) int {
	n := 0
	err := r.scan(ctx, func(keys []string) error {
		n += len(keys)
		return nil
	})
	if err != nil {
		r.logger.Warn("redis scan failed", zap.Error(err))
	}
	return n
}

func (r *Redis[V]) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
