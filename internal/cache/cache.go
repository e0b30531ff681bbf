package cache

import (
	"sync"
	"time"
)

// Cache is a TTL map. Reads slide the expiry forward, so entries live
// for ttl after their last use.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	m       map[string]entry[V]
	now     func() time.Time
	onEvict func(key string, val V)
}

type entry[V any] struct {
	val V
	exp time.Time
}

type Option[V any] func(*Cache[V])

// WithEvict runs fn whenever an entry leaves the cache, outside the lock.
func WithEvict[V any](fn func(key string, val V)) Option[V] {
	return func(c *Cache[V]) { c.onEvict = fn }
}

func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c := &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.Lock()
	e, ok := c.m[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		delete(c.m, key)
		c.mu.Unlock()
		c.evicted(key, e.val)
		var zero V
		return zero, false
	}

	e.exp = now.Add(c.ttl)
	c.m[key] = e
	c.mu.Unlock()

	return e.val, true
}

// GetOrCreate returns the live entry for key or stores the result of mk.
func (c *Cache[V]) GetOrCreate(key string, mk func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	// another caller may have won the race
	if e, ok := c.m[key]; ok && !now.After(e.exp) {
		return e.val
	}

	v := mk()
	c.m[key] = entry[V]{val: v, exp: now.Add(c.ttl)}
	return v
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	e, ok := c.m[key]
	delete(c.m, key)
	c.mu.Unlock()

	if ok {
		c.evicted(key, e.val)
	}
}

// Sweep drops every expired entry and reports how many went.
func (c *Cache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	gone := make(map[string]V)
	for k, e := range c.m {
		if now.After(e.exp) {
			gone[k] = e.val
			delete(c.m, k)
		}
	}
	c.mu.Unlock()

	for k, v := range gone {
		c.evicted(k, v)
	}
	return len(gone)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Cache[V]) evicted(key string, val V) {
	if c.onEvict != nil {
		c.onEvict(key, val)
	}
}
