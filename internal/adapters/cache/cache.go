// Package cache provides the process cache placed in front of the record store.
package cache

import (
	"context"
	"sync"

	"github.com/okian/uranai/pkg/metrics"
)

// Cache is a key-value cache with a coarse flush.
type Cache[V any] interface {
	// Get returns the cached value for key, if any.
	Get(ctx context.Context, key string) (V, bool)
	// Put stores v under key, replacing any previous value.
	Put(ctx context.Context, key string, v V)
	// InvalidateAll drops every entry.
	InvalidateAll(ctx context.Context)
}

// InMemory is a mutex-guarded map implementation of Cache.
type InMemory[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewInMemory creates an empty in-memory cache.
func NewInMemory[V any]() *InMemory[V] {
	return &InMemory[V]{entries: make(map[string]V)}
}

// Get returns the cached value for key.
func (c *InMemory[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return v, ok
}

// Put stores v under key.
func (c *InMemory[V]) Put(_ context.Context, key string, v V) {
	c.mu.Lock()
	c.entries[key] = v
	n := len(c.entries)
	c.mu.Unlock()

	metrics.UpdateCacheEntries(n)
}

// InvalidateAll drops every entry.
func (c *InMemory[V]) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]V)
	c.mu.Unlock()

	metrics.RecordCacheFlush()
	metrics.UpdateCacheEntries(0)
}

// Len returns the number of cached entries.
func (c *InMemory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
