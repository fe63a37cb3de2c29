// Package cache provides the debounce caches that sit in front of the
// upstream quota APIs.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is a bounded cache of raw upstream payloads whose entries expire a
// fixed window after they are stored. Lookups and stores are each guarded by
// the underlying LRU's lock; the fetch between a miss and its store is not,
// so concurrent misses on one key may each call upstream and the last store
// wins.
//
// A TTL built with a window of zero or less caches nothing.
type TTL struct {
	lru *expirable.LRU[string, json.RawMessage]
	ttl time.Duration
}

// New returns a cache holding at most capacity entries for ttl each.
func New(capacity int, ttl time.Duration) *TTL {
	if capacity < 1 {
		capacity = 1
	}
	c := &TTL{ttl: ttl}
	if ttl > 0 {
		c.lru = expirable.NewLRU[string, json.RawMessage](capacity, nil, ttl)
	}
	return c
}

// Window returns the configured expiry window.
func (c *TTL) Window() time.Duration { return c.ttl }

// Enabled reports whether the cache stores anything.
func (c *TTL) Enabled() bool { return c != nil && c.lru != nil }

// Get returns the payload stored under key if it has not expired.
func (c *TTL) Get(key string) (json.RawMessage, bool) {
	if !c.Enabled() {
		return nil, false
	}
	return c.lru.Get(key)
}

// Add stores payload under key, replacing any previous entry and restarting
// its window.
func (c *TTL) Add(key string, payload json.RawMessage) {
	if !c.Enabled() {
		return
	}
	c.lru.Add(key, payload)
}

func (c *TTL) size() int {
	if !c.Enabled() {
		return 0
	}
	return c.lru.Len()
}

func (c *TTL) purge() {
	if c.Enabled() {
		c.lru.Purge()
	}
}

// Fetch returns the cached payload for key, or calls fetch and stores its
// result. The bool reports a cache hit. Failed fetches are not stored.
func (c *TTL) Fetch(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	c.Add(key, v)
	return v, false, nil
}
