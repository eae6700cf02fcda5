// Package cache provides a concurrency-safe in-memory store whose entries expire after a fixed TTL.
//
// Expired entries are never returned. They are evicted lazily on lookup, opportunistically on
// insert, and optionally by a sweeper goroutine started with StartSweeper.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the lifetime used when New is given a non-positive TTL.
const DefaultTTL = 5 * time.Second

type entry[V any] struct {
	value   V
	expires time.Time
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now          func() time.Time
	sweepOnWrite bool
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithoutSweepOnWrite disables eviction of expired entries during Put.
func WithoutSweepOnWrite() Option {
	return func(o *options) {
		o.sweepOnWrite = false
	}
}

// Cache is a TTL keyed store. The zero value is not usable; construct it with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	opts    options
}

// New creates a cache whose entries live for ttl.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{now: time.Now, sweepOnWrite: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		opts:    o,
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.opts.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !now.Before(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if cur, still := c.entries[key]; still && !now.Before(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with expiry now+TTL, replacing any previous entry.
func (c *Cache[V]) Put(key string, value V) {
	now := c.opts.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.sweepOnWrite {
		c.evictLocked(now)
	}
	c.entries[key] = entry[V]{value: value, expires: now.Add(c.ttl)}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, expired ones included until they are evicted.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Purge evicts expired entries and returns how many were removed.
func (c *Cache[V]) Purge() int {
	now := c.opts.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked(now)
}

func (c *Cache[V]) evictLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper purges expired entries every interval until ctx is cancelled.
// The returned channel is closed once the sweeper goroutine has exited.
func (c *Cache[V]) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = c.ttl
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Purge()
			}
		}
	}()
	return done
}
