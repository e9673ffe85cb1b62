// Package query is the portal's read-through cache. Fetch results are keyed
// by resource name plus serialized parameters, concurrent requests for one
// key collapse into a single network call, and mutations invalidate the
// dependent keys so the next read re-fetches. Failed fetches are reported to
// registered observers; the session layer uses that hook for the one
// cross-cutting unauthorized policy.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds how long a fetch result serves reads without a
// re-fetch.
const DefaultTTL = 30 * time.Second

// Observer is notified of every failed fetch.
type Observer func(key string, err error)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache maps resource keys to their latest fetch result.
type Cache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	// inflight counts fetches currently running per key. gens fences stale
	// completions: a fetch records the key's generation when it starts and
	// its result is discarded if an invalidation bumped the generation while
	// it was in flight. Both records live only as long as a fetch for the
	// key is running, so the maps never accumulate retired keys.
	inflight map[string]int
	gens     map[string]uint64

	obsMu     sync.Mutex
	observers []Observer
}

// New creates a Cache with the given TTL (DefaultTTL when zero or negative).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:      ttl,
		entries:  make(map[string]*entry),
		inflight: make(map[string]int),
		gens:     make(map[string]uint64),
	}
}

// Key builds a resource key from a resource name and its serialized
// parameters.
func Key(resource string, params ...string) string {
	if len(params) == 0 {
		return resource
	}
	return resource + "|" + strings.Join(params, "|")
}

// OnError registers an observer for failed fetches.
func (c *Cache) OnError(obs Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, obs)
}

// Get returns the cached value for key, or runs fetch to populate it.
// Concurrent callers of the same key share one in-flight fetch. Errors are
// never cached.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A fetch that finished while this caller was queueing already
		// populated the slot.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		gen := c.generation(key)
		defer c.release(key)
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})
	if err != nil {
		c.notify(key, err)
		return nil, err
	}
	return v, nil
}

// Invalidate drops every entry whose key starts with one of the prefixes and
// bumps the generation of every matching fetch still in flight, so a fetch
// started before the invalidation cannot overwrite fresher data.
func (c *Cache) Invalidate(prefixes ...string) {
	stale := make(map[string]struct{})
	c.mu.Lock()
	for _, p := range prefixes {
		for k := range c.entries {
			if strings.HasPrefix(k, p) {
				delete(c.entries, k)
				stale[k] = struct{}{}
			}
		}
		// Only running fetches need a generation bump; a prefix matching
		// nothing leaves no record behind.
		for k := range c.inflight {
			if strings.HasPrefix(k, p) {
				c.gens[k]++
				stale[k] = struct{}{}
			}
		}
	}
	c.mu.Unlock()

	// Detach in-flight fetches from future callers of the same keys.
	for k := range stale {
		c.group.Forget(k)
	}
}

// Clear drops every entry and fences every running fetch.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.inflight {
		c.gens[k]++
	}
	c.entries = make(map[string]*entry)
}

// StartCleanup runs a background goroutine that removes expired entries
// until the context is cancelled.
func (c *Cache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				now := time.Now()
				for k, e := range c.entries {
					if now.After(e.expiresAt) {
						delete(c.entries, k)
					}
				}
				c.mu.Unlock()
			}
		}
	}()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// generation marks the key as in flight and returns its current generation.
// The marking matters: Invalidate can only fence fetches it can see.
func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
	return c.gens[key]
}

// release retires a fetch. Once no fetch for the key is running, nothing can
// hold its generation, so the record is dropped.
func (c *Cache) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
		delete(c.gens, key)
	}
}

func (c *Cache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return
	}
	c.entries[key] = &entry{value: v, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Cache) notify(key string, err error) {
	c.obsMu.Lock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.obsMu.Unlock()
	for _, obs := range observers {
		obs(key, err)
	}
}

// Fetch is the typed convenience wrapper over Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return out, nil
}
