package flagtree

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cristianoliveira/flagtree/cache"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is the lifetime of cached completion results.
const DefaultCacheTTL = cache.DefaultTTL

// CacheOption configures a CompletionCache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	pool  *StringPool
	clock func() time.Time
}

// WithStringPool interns stored values and descriptions in pool.
func WithStringPool(pool *StringPool) CacheOption {
	return func(c *cacheConfig) { c.pool = pool }
}

// WithCacheClock replaces time.Now, mostly for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *cacheConfig) { c.clock = now }
}

// CompletionCache memoizes completion results for a short TTL.
// Results are deep-copied on the way in and out, so callers may modify what they get.
type CompletionCache struct {
	store *cache.Cache[*CompletionResult]
	group singleflight.Group
	pool  *StringPool
}

// NewCompletionCache creates a cache whose entries expire after ttl.
func NewCompletionCache(ttl time.Duration, opts ...CacheOption) *CompletionCache {
	var cfg cacheConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var storeOpts []cache.Option
	if cfg.clock != nil {
		storeOpts = append(storeOpts, cache.WithClock(cfg.clock))
	}
	return &CompletionCache{
		store: cache.New[*CompletionResult](ttl, storeOpts...),
		pool:  cfg.pool,
	}
}

// CacheKey builds the deterministic key of a completion request from the
// command path, the prefix and the explicitly set flags sorted by name.
func CacheKey(path []string, prefix string, flags map[string]string) string {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(path)+len(names)+2)
	parts = append(parts, path...)
	parts = append(parts, "__prefix:"+prefix)
	for _, name := range names {
		parts = append(parts, name+"="+flags[name])
	}
	return strings.Join(parts, "\x00")
}

// Get returns a copy of the unexpired result stored under key.
func (c *CompletionCache) Get(key string) (*CompletionResult, bool) {
	r, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Put stores a copy of r under key for the cache TTL.
func (c *CompletionCache) Put(key string, r *CompletionResult) {
	if r == nil {
		return
	}
	c.store.Put(key, c.intern(r.Clone()))
}

// Len returns the number of stored entries.
func (c *CompletionCache) Len() int {
	return c.store.Len()
}

// Purge evicts expired entries.
func (c *CompletionCache) Purge() int {
	return c.store.Purge()
}

// Clear drops every entry.
func (c *CompletionCache) Clear() {
	c.store.Clear()
}

// StartSweeper periodically evicts expired entries until ctx is cancelled.
func (c *CompletionCache) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	return c.store.StartSweeper(ctx, interval)
}

// Wrap memoizes fn. Concurrent misses for the same key share one call of fn.
// Errors and partial results, such as timeouts, are returned but not stored.
func (c *CompletionCache) Wrap(fn CompletionFunc) CompletionFunc {
	return func(ctx *Context, prefix string) (*CompletionResult, error) {
		key := CacheKey(requestPath(ctx), prefix, ctx.Flags())
		if r, ok := c.Get(key); ok {
			ctx.Logger().Debug("completion cache hit", "path", ctx.CommandPath(), "prefix", prefix)
			return r, nil
		}

		v, err, _ := c.group.Do(key, func() (any, error) {
			if r, ok := c.Get(key); ok {
				return r, nil
			}
			r, err := fn(ctx, prefix)
			if err != nil {
				return nil, err
			}
			if r == nil {
				r = NewCompletionResult()
			}
			if !r.Partial() {
				c.Put(key, r)
			}
			return r, nil
		})
		if err != nil {
			return nil, err
		}
		return v.(*CompletionResult).Clone(), nil
	}
}

// requestPath is the command path followed by the positional arguments typed
// so far, which select the candidates as much as the path does.
func requestPath(ctx *Context) []string {
	path := ctx.Path()
	for _, a := range ctx.args {
		path = append(path, "__arg:"+a)
	}
	return path
}

func (c *CompletionCache) intern(r *CompletionResult) *CompletionResult {
	if c.pool == nil {
		return r
	}
	for i := range r.Items {
		r.Items[i].Value = c.pool.Intern(r.Items[i].Value)
		r.Items[i].Description = c.pool.Intern(r.Items[i].Description)
	}
	for i := range r.ActiveHelp {
		r.ActiveHelp[i].Message = c.pool.Intern(r.ActiveHelp[i].Message)
	}
	return r
}
