package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skillbridge/skillbridge-api/pkg/metrics"
)

// Memory is an in-process LRU cache whose entries expire after a TTL.
type Memory[K comparable, V any] struct {
	name string
	lru  *expirable.LRU[K, V]
}

var _ Cache[string, int] = (*Memory[string, int])(nil)

// NewMemory creates a cache holding at most size entries for ttl each.
// name labels the hit/miss metrics.
func NewMemory[K comparable, V any](name string, size int, ttl time.Duration) *Memory[K, V] {
	if size <= 0 {
		size = 1
	}
	return &Memory[K, V]{
		name: name,
		lru:  expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Get returns the live value for key and records a hit or miss.
func (m *Memory[K, V]) Get(_ context.Context, key K) (V, bool) {
	v, ok := m.lru.Get(key)
	if ok {
		metrics.IncCacheRequest(m.name, resultHit)
	} else {
		metrics.IncCacheRequest(m.name, resultMiss)
	}
	return v, ok
}

// Set stores value under key, evicting the least recently used entry when full.
func (m *Memory[K, V]) Set(_ context.Context, key K, value V) {
	m.lru.Add(key, value)
}

// Delete removes key.
func (m *Memory[K, V]) Delete(_ context.Context, key K) {
	m.lru.Remove(key)
}

// Purge removes every entry.
func (m *Memory[K, V]) Purge(_ context.Context) {
	m.lru.Purge()
}

// Len returns the number of entries, including expired ones not yet evicted.
func (m *Memory[K, V]) Len(_ context.Context) int {
	return m.lru.Len()
}
