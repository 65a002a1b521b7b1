// pathcache.go: fixed-capacity cache for resources identified by path
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// pathEntry is a stored value with its usage stamp.
type pathEntry[V any] struct {
	value    V
	lastUsed atomic.Int64
}

type pathShard[V any] struct {
	mu      sync.RWMutex
	entries map[string]*pathEntry[V]
}

// PathCache caches values derived from resources such as files, keyed by
// path. The caller decides freshness (for example by comparing a stored
// modification time with the file's current one).
//
// Every access stamps the entry with the next value of a global counter.
// When the cache grows past its capacity, a single background cleanup
// removes entries whose stamp lags the counter by at least the capacity,
// until the cache is back under it. This approximates LRU at the cost of an
// atomic increment per access.
type PathCache[V any] struct {
	shards []*pathShard[V]
	mask   uint64

	clock    atomic.Int64
	count    atomic.Int64
	capacity atomic.Int64

	fills *fillCoordinator[string, V]

	// Lifecycle
	mu       sync.Mutex
	closed   atomic.Bool
	cleaning atomic.Bool
	cleanup  sync.WaitGroup

	logger  Logger
	metrics MetricsCollector

	hits      int64
	misses    int64
	evictions int64
}

// NewPathCache creates a cache holding about cfg.Capacity entries.
func NewPathCache[V any](cfg Config) *PathCache[V] {
	_ = cfg.Validate()

	c := &PathCache[V]{
		shards:  make([]*pathShard[V], DefaultShardCount),
		mask:    uint64(DefaultShardCount - 1),
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	for i := range c.shards {
		c.shards[i] = &pathShard[V]{entries: make(map[string]*pathEntry[V])}
	}
	c.capacity.Store(int64(cfg.Capacity))

	c.fills = &fillCoordinator[string, V]{
		owner:   c,
		locks:   newLockRegistry[string](cfg.PoolSize),
		lookup:  c.lookup,
		store:   c.store,
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	return c
}

// Get returns the cached value for path when fresh reports it usable,
// otherwise it runs fill and caches the result. A nil fresh treats every
// stored value as fresh.
func (c *PathCache[V]) Get(ctx context.Context, path string, fresh func(V) bool, fill FillFunc[string, V]) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, NewErrCacheClosed("Get")
	}

	start := time.Now()
	shard := c.shardFor(path)
	shard.mu.RLock()
	e := shard.entries[path]
	shard.mu.RUnlock()

	if e != nil {
		if fresh == nil || fresh(e.value) {
			c.touch(e)
			atomic.AddInt64(&c.hits, 1)
			c.metrics.RecordGet(time.Since(start).Nanoseconds(), true)
			return e.value, nil
		}
		// Stale: drop it so the fill below replaces it
		c.removeEntry(path, e)
	}
	atomic.AddInt64(&c.misses, 1)
	c.metrics.RecordGet(time.Since(start).Nanoseconds(), false)

	return c.fills.getOrFill(ctx, path, fill)
}

// Remove drops path from the cache.
func (c *PathCache[V]) Remove(path string) bool {
	shard := c.shardFor(path)
	shard.mu.Lock()
	_, ok := shard.entries[path]
	if ok {
		delete(shard.entries, path)
	}
	shard.mu.Unlock()

	if ok {
		c.count.Add(-1)
	}
	return ok
}

// Count returns the current number of entries.
func (c *PathCache[V]) Count() int {
	return int(c.count.Load())
}

// Capacity returns the configured capacity.
func (c *PathCache[V]) Capacity() int {
	return int(c.capacity.Load())
}

// SetCapacity changes the capacity. Shrinking below the current count
// schedules a cleanup.
func (c *PathCache[V]) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return NewErrInvalidCapacity(capacity)
	}
	c.capacity.Store(int64(capacity))
	c.maybeCleanup()
	return nil
}

// ApplyConfig implements Tunable. An unset capacity is ignored.
func (c *PathCache[V]) ApplyConfig(cfg Config) {
	if cfg.Capacity == 0 {
		return
	}
	if err := c.SetCapacity(cfg.Capacity); err != nil {
		c.logger.Warn("capacity not applied", "error", err)
	}
}

// Stats returns cache statistics.
func (c *PathCache[V]) Stats() CacheStats {
	fills, fillErrors := c.fills.counters()
	return CacheStats{
		Hits:       uint64(atomic.LoadInt64(&c.hits)),   // #nosec G115 - stats counters are always positive
		Misses:     uint64(atomic.LoadInt64(&c.misses)), // #nosec G115 - stats counters are always positive
		Fills:      fills,
		FillErrors: fillErrors,
		Evictions:  uint64(atomic.LoadInt64(&c.evictions)), // #nosec G115 - stats counters are always positive
		Size:       c.Count(),
	}
}

// Close stops scheduling cleanups and waits for a running one to finish.
// Get returns MNEMO_CACHE_CLOSED afterwards.
func (c *PathCache[V]) Close() error {
	c.mu.Lock()
	c.closed.Store(true)
	c.mu.Unlock()

	c.cleanup.Wait()
	return nil
}

func (c *PathCache[V]) shardFor(path string) *pathShard[V] {
	return c.shards[xxhash.Sum64String(path)&c.mask]
}

func (c *PathCache[V]) touch(e *pathEntry[V]) {
	e.lastUsed.Store(c.clock.Add(1))
}

func (c *PathCache[V]) lookup(path string) (V, bool) {
	shard := c.shardFor(path)
	shard.mu.RLock()
	e := shard.entries[path]
	shard.mu.RUnlock()

	if e == nil {
		var zero V
		return zero, false
	}
	c.touch(e)
	return e.value, true
}

func (c *PathCache[V]) store(path string, value V) (V, bool) {
	shard := c.shardFor(path)
	shard.mu.Lock()
	if existing, ok := shard.entries[path]; ok {
		shard.mu.Unlock()
		c.touch(existing)
		return existing.value, false
	}
	e := &pathEntry[V]{value: value}
	c.touch(e)
	shard.entries[path] = e
	shard.mu.Unlock()

	c.count.Add(1)
	c.maybeCleanup()
	return value, true
}

// removeEntry deletes path only if it still maps to e.
func (c *PathCache[V]) removeEntry(path string, e *pathEntry[V]) {
	shard := c.shardFor(path)
	shard.mu.Lock()
	removed := shard.entries[path] == e
	if removed {
		delete(shard.entries, path)
	}
	shard.mu.Unlock()

	if removed {
		c.count.Add(-1)
	}
}

// maybeCleanup starts the background cleanup when over capacity and none
// is running.
func (c *PathCache[V]) maybeCleanup() {
	if c.count.Load() <= c.capacity.Load() {
		return
	}
	if !c.cleaning.CompareAndSwap(false, true) {
		return
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		c.cleaning.Store(false)
		return
	}
	c.cleanup.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.cleanup.Done()
		for {
			progress := c.sweep()
			c.cleaning.Store(false)

			// An insert may have seen the flag still set and skipped scheduling
			if !progress || c.count.Load() <= c.capacity.Load() || !c.cleaning.CompareAndSwap(false, true) {
				return
			}
		}
	}()
}

// sweep removes entries whose stamp lags the clock by at least the capacity.
// Stamps are unique, so one pass leaves at most capacity entries unless
// new ones arrive meanwhile; it loops until under capacity. It returns false
// when a pass removed nothing.
func (c *PathCache[V]) sweep() bool {
	for pass := 1; c.count.Load() > c.capacity.Load(); pass++ {
		threshold := c.clock.Load() - c.capacity.Load()
		removed := 0

		for _, shard := range c.shards {
			shard.mu.Lock()
			for path, e := range shard.entries {
				if e.lastUsed.Load() <= threshold {
					delete(shard.entries, path)
					removed++
				}
			}
			shard.mu.Unlock()
		}

		c.count.Add(int64(-removed))
		atomic.AddInt64(&c.evictions, int64(removed))
		c.metrics.RecordEviction(removed)
		c.logger.Debug("path cache cleanup", "pass", pass, "removed", removed, "remaining", c.count.Load())

		if removed == 0 {
			return false
		}
	}
	return true
}
