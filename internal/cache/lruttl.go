// Package cache provides the engine's two bounded caches: a per-artifact
// LRU+TTL cache (C1) and a process-wide compiled-code memo (C2).
package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry is the value stored in each list element.
type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
}

// LRUTTL is a bounded key-value cache ordered by access recency, with
// age-based eviction. A single insertion-ordered list supports both LRU
// promotion (move-to-front on hit) and FIFO eviction (remove-back when at
// capacity) in O(1), grounded on the teacher's model pool
// (internal/infra/engine/pool.go) and the original's custom_cache.py.
//
// No method takes Mu itself: callers hold Mu around each call, and the
// Evaluator holds it across a compute-and-put sequence so that concurrent
// fills of one cache run one at a time (§4.5 of the spec).
type LRUTTL[K comparable, V any] struct {
	Mu sync.Mutex

	maxSize int
	ttl     time.Duration

	items map[K]*list.Element
	order *list.List // front = most recently used
	now   func() time.Time
}

// New creates an LRU+TTL cache with the given capacity and entry lifetime.
func New[K comparable, V any](maxSize int, ttl time.Duration) *LRUTTL[K, V] {
	return &LRUTTL[K, V]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[K]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get returns the cached value for k, or ok=false if absent or expired.
// Expired entries are deleted on access. A hit promotes the entry to
// most-recently-used.
//
// Get does not take Mu itself — callers that only need a single read
// should wrap the call; callers filling on miss hold Mu across the
// compute-and-put that follows the miss (see Evaluator.Eval).
func (c *LRUTTL[K, V]) Get(k K) (V, bool) {
	el, ok := c.items[k]
	if !ok {
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.now().Sub(e.insertedAt) > c.ttl {
		c.removeElement(el)
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Put inserts or replaces k's value with the current timestamp, evicting
// the least-recently-used entry if at capacity. Put is a no-op if the
// cache has zero capacity.
func (c *LRUTTL[K, V]) Put(k K, v V) {
	if c.maxSize <= 0 {
		return
	}
	if el, ok := c.items[k]; ok {
		el.Value.(*entry[K, V]).value = v
		el.Value.(*entry[K, V]).insertedAt = c.now()
		c.order.MoveToFront(el)
		return
	}
	for len(c.items) >= c.maxSize {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}
	el := c.order.PushFront(&entry[K, V]{key: k, value: v, insertedAt: c.now()})
	c.items[k] = el
}

// Delete removes k if present.
func (c *LRUTTL[K, V]) Delete(k K) {
	if el, ok := c.items[k]; ok {
		c.removeElement(el)
	}
}

// Clear empties the cache.
func (c *LRUTTL[K, V]) Clear() {
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// Keys returns all non-expired keys, most-recently-used first. Expired
// entries are not evicted as a side effect of Keys (use Sweep for that).
func (c *LRUTTL[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[K, V])
		if c.now().Sub(e.insertedAt) <= c.ttl {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Size returns the current entry count, including any not-yet-swept
// expired entries.
func (c *LRUTTL[K, V]) Size() int {
	return len(c.items)
}

// Sweep deletes every entry whose age exceeds the TTL. Called periodically
// by the janitor (C6).
func (c *LRUTTL[K, V]) Sweep() {
	var expired []*list.Element
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[K, V])
		if c.now().Sub(e.insertedAt) > c.ttl {
			expired = append(expired, el)
		}
	}
	for _, el := range expired {
		c.removeElement(el)
	}
}

func (c *LRUTTL[K, V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.order.Remove(el)
}
