/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package memo provides a small bounded cache that evicts its oldest entry
// when full. It backs per-frame memoization (text layout results, measured
// line breaks) where recomputation is cheap enough that plain FIFO eviction
// beats the bookkeeping of an LRU.
package memo

import "sync"

// Cache is a fixed-capacity map with insertion-order eviction. Safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	max   int
	items map[K]V
	order []K
}

// New returns a cache holding at most max entries. max <= 0 defaults to 64.
func New[K comparable, V any](max int) *Cache[K, V] {
	if max <= 0 {
		max = 64
	}
	return &Cache[K, V]{max: max, items: make(map[K]V, max)}
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Put stores a value. Storing an existing key replaces the value without
// refreshing its age; when the cache is full the oldest entry is dropped.
func (c *Cache[K, V]) Put(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		c.items[key] = v
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[key] = v
	c.order = append(c.order, key)
}

// GetOrCompute returns the cached value, computing and storing it on a miss.
// compute runs outside the lock; concurrent misses may compute twice but
// store one consistent value.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V, c.max)
	c.order = nil
}
