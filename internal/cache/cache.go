// Package cache memoizes flow results in memory, keyed by a hash of the input.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/codefionn/codecompanion/internal/logger"
)

// DefaultCleanupInterval is how often expired entries are evicted.
const DefaultCleanupInterval = 30 * time.Minute

// Cache is a typed TTL cache. A nil *Cache or one created with a
// non-positive TTL never stores anything, so callers need no special case
// for "caching disabled".
type Cache[V any] struct {
	useCase string
	ttl     time.Duration
	cache   *gocache.Cache
	group   singleflight.Group
	log     *logger.Logger
}

// New creates a cache whose entries live for ttl.
func New[V any](useCase string, ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		useCase: useCase,
		ttl:     ttl,
		log:     logger.Global().WithPrefix("cache:" + useCase),
	}
	if ttl > 0 {
		c.cache = gocache.New(ttl, DefaultCleanupInterval)
	}
	return c
}

// Enabled reports whether the cache stores entries.
func (c *Cache[V]) Enabled() bool {
	return c != nil && c.cache != nil
}

// Get retrieves an item from the cache by its key
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		c.log.Error("wrong type stored under key %s", key)
		return zero, false
	}
	return v, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	if !c.Enabled() {
		return
	}
	c.cache.SetDefault(key, value)
}

// Len returns the number of unexpired entries.
func (c *Cache[V]) Len() int {
	if !c.Enabled() {
		return 0
	}
	return c.cache.ItemCount()
}

// Flush drops every entry.
func (c *Cache[V]) Flush() {
	if c.Enabled() {
		c.cache.Flush()
	}
}

// GetOrLoad returns the cached value for key or calls load, caching its
// result when it succeeds. The bool reports a cache hit.
//
// Concurrent loads of the same key share one call. The shared call keeps
// the first caller's values and deadline but not its cancellation, so one
// caller going away does not fail the others; each caller stops waiting
// when its own ctx is done.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, bool, error) {
	var zero V
	if !c.Enabled() {
		v, err := load(ctx)
		return v, false, err
	}

	if v, ok := c.Get(key); ok {
		c.log.Debug("hit %s", key)
		return v, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithDeadline(loadCtx, deadline)
			defer cancel()
		}

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		v, _ := res.Val.(V)
		return v, false, res.Err
	}
}

// Key hashes parts into a cache key. Parts are separated so that
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
