// Package cache provides the bounded TTL caches shared by the services.
package cache

import "context"

// Cache is a best-effort key/value cache. Backends never return errors to
// callers; a failed lookup is a miss.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V)
	Delete(ctx context.Context, key K)
	Purge(ctx context.Context)
	Len(ctx context.Context) int
}

const (
	resultHit  = "hit"
	resultMiss = "miss"
)
