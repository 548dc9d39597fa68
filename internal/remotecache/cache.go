// Package remotecache is the process-wide request cache. Entries are keyed
// by the query key builder's canonical keys, concurrent identical fetches
// are de-duplicated, stale entries are served while a refresh runs in the
// background, and mutations or session invalidation clear entries.
//
// A late-arriving response for stale request parameters lands under its own
// canonical key; no mounted screen reads that key anymore, so the payload is
// simply never rendered. Session invalidation instead bumps a generation
// counter so a not-yet-settled fetch cannot repopulate authenticated data
// after everything was cleared.
package remotecache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/simp-lee/consolekit/internal/domain"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a stale-while-revalidate request cache. The zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	gen     uint64

	group    singleflight.Group
	freshFor time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for background revalidation failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache whose entries count as fresh for freshFor. A stale
// entry is still served immediately, with a refresh issued in the
// background.
func New(freshFor time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]entry),
		freshFor: freshFor,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// FetchFunc produces the value for a key. It runs at most once per key for
// any number of concurrent callers.
type FetchFunc func(ctx context.Context) (any, error)

// Get returns the cached value for key, if any, without fetching.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetOrFetch returns the value for key. A fresh entry is returned as-is; a
// stale entry is returned immediately while a background refresh runs; a
// missing entry blocks on a single shared fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	gen := c.gen
	fresh := ok && c.now().Sub(e.storedAt) < c.freshFor
	c.mu.Unlock()

	if ok {
		if !fresh {
			c.revalidate(key, gen, fetch)
		}
		return e.value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// revalidate refreshes key in the background. Failures only log: the caller
// already has the stale value, and the failure was dispatched by the request
// pipeline like any other.
func (c *Cache) revalidate(key string, gen uint64, fetch FetchFunc) {
	go func() {
		_, err, _ := c.group.Do(key, func() (any, error) {
			value, err := fetch(context.Background())
			if err != nil {
				return nil, err
			}
			c.store(key, gen, value)
			return value, nil
		})
		if err != nil {
			c.logger.Warn("cache revalidation failed", slog.String("key", key), slog.Any("error", err))
		}
	}()
}

// store writes value under key unless the cache generation moved since the
// fetch was issued — a fetch that raced a Clear must not resurrect data.
func (c *Cache) store(key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

// Invalidate removes one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every key of a resource, for mutation
// completions.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything and bumps the generation. It is synchronous:
// callers may rely on the cache being empty, and staying empty with respect
// to fetches issued before the call, by the time Clear returns.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.gen++
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetchAs is the typed convenience wrapper around Cache.GetOrFetch.
func GetOrFetchAs[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		// Two callers sharing a key with different types is a wiring bug;
		// surface it instead of masking it as an empty result.
		return zero, domain.NewAppError(domain.TagInternalServer,
			fmt.Sprintf("cached value for %q is %T, not %T", key, v, zero), nil)
	}
	return typed, nil
}
