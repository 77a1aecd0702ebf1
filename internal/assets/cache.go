/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets resolves item image references to decoded images. Each URL
// is fetched at most once for the life of the cache: concurrent requests
// share one inflight load, and a failed URL is remembered as permanently
// unavailable so the renderer can keep showing its placeholder without
// hammering a dead link on every frame.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"corkboard/internal/log"
)

// State describes what the cache knows about a URL.
type State int

const (
	// StateLoading means a fetch is inflight; render a loading placeholder.
	StateLoading State = iota
	// StateReady means the image decoded and is available.
	StateReady
	// StateFailed means the fetch or decode failed; never retried.
	StateFailed
)

// fetchTimeout bounds background loads kicked off from the render path.
const fetchTimeout = 30 * time.Second

type entry struct {
	done chan struct{}
	img  image.Image // nil once done means the URL failed
}

// Cache is the process-wide image cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	client  *http.Client
	onReady func()
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClient replaces the HTTP client used for remote URLs.
func WithClient(c *http.Client) Option {
	return func(a *Cache) { a.client = c }
}

// WithOnReady installs a callback invoked after a load resolves, used to
// request a redraw.
func WithOnReady(fn func()) Option {
	return func(a *Cache) { a.onReady = fn }
}

// SetOnReady replaces the resolve callback. The renderer that owns the
// redraw loop installs itself here when it adopts a shared cache.
func (c *Cache) SetOnReady(fn func()) {
	c.mu.Lock()
	c.onReady = fn
	c.mu.Unlock()
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		client:  &http.Client{Timeout: fetchTimeout},
		logger:  log.WithComponent("assets"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Lookup reports the state of a URL without blocking. The first call for a
// URL starts a background load; once it resolves the onReady callback fires
// and subsequent lookups return the image. An empty URL is a permanent miss.
func (c *Cache) Lookup(url string) (image.Image, State) {
	if url == "" {
		return nil, StateFailed
	}
	e, started := c.ensure(url)
	if started {
		go c.run(url, e)
	}
	select {
	case <-e.done:
		if e.img == nil {
			return nil, StateFailed
		}
		return e.img, StateReady
	default:
		return nil, StateLoading
	}
}

// Load blocks until the URL resolves or ctx is done. A URL that failed
// earlier returns its error immediately without a new fetch.
func (c *Cache) Load(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("empty image url")
	}
	e, started := c.ensure(url)
	if started {
		go c.run(url, e)
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.img == nil {
		return nil, fmt.Errorf("image %s unavailable", url)
	}
	return e.img, nil
}

// Put seeds the cache with an already-decoded image, e.g. from a bundle
// import. It replaces any existing record for the URL.
func (c *Cache) Put(url string, img image.Image) {
	done := make(chan struct{})
	close(done)
	c.mu.Lock()
	c.entries[url] = &entry{done: done, img: img}
	c.mu.Unlock()
}

// Clear forgets everything, including failure records. Used when the draw
// context is lost and all caches restart cold.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// ensure returns the entry for url, creating it if absent. The boolean is
// true only for the caller that created the entry and owns the fetch.
func (c *Cache) ensure(url string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[url]; ok {
		return e, false
	}
	e := &entry{done: make(chan struct{})}
	c.entries[url] = e
	return e, true
}

func (c *Cache) run(url string, e *entry) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	img, err := c.fetch(ctx, url)
	if err != nil {
		c.logger.Warn("image load failed", "url", url, "error", err)
		img = nil
	}
	e.img = img
	close(e.done)
	c.mu.Lock()
	cb := c.onReady
	c.mu.Unlock()
	if err == nil && cb != nil {
		cb()
	}
}

func (c *Cache) fetch(ctx context.Context, url string) (image.Image, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %s", resp.Status)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return img, nil
	}

	f, err := os.Open(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// Aspect returns width/height of a decoded image, or 0 for nil.
func Aspect(img image.Image) float64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	if b.Dy() == 0 {
		return 0
	}
	return float64(b.Dx()) / float64(b.Dy())
}
