// weak.go: memoization keyed by object identity without pinning the key
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

type weakEntry[V any] struct {
	value   V
	cleanup runtime.Cleanup
}

// WeakCache associates a value with the identity of a key object (*K)
// without keeping the key alive. Once the garbage collector reclaims a key,
// its entry is dropped by a runtime cleanup; removal is eventual, never eager.
//
// Values must not reference their key, directly or indirectly: the cache
// holds values strongly, so such a value would keep its key reachable
// forever.
//
// A fill running for this cache may call back into the same cache with the
// context it received. Other keys go through the usual per-key lock, so
// goroutines fanned out by one fill still share a single fill per key. A
// nested call for the key its own chain is filling runs without waiting on
// that chain, and the first stored result wins.
type WeakCache[K, V any] struct {
	entries sync.Map // weak.Pointer[K] -> *weakEntry[V]
	count   int64
	fills   *fillCoordinator[weak.Pointer[K], V]

	logger  Logger
	metrics MetricsCollector

	hits      int64
	misses    int64
	evictions int64
}

// NewWeakCache creates an empty weak-key cache.
func NewWeakCache[K, V any](cfg Config) *WeakCache[K, V] {
	_ = cfg.Validate()

	c := &WeakCache[K, V]{
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	c.fills = &fillCoordinator[weak.Pointer[K], V]{
		owner:   c,
		locks:   newLockRegistry[weak.Pointer[K]](cfg.PoolSize),
		lookup:  c.lookup,
		store:   c.store,
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	return c
}

// TryGetValue returns the value associated with key, if any.
func (c *WeakCache[K, V]) TryGetValue(key *K) (V, bool) {
	var zero V
	if key == nil {
		return zero, false
	}

	start := time.Now()
	value, ok := c.lookup(weak.Make(key))
	if ok {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	c.metrics.RecordGet(time.Since(start).Nanoseconds(), ok)
	return value, ok
}

// GetOrAdd returns the value for key, running fill at most once per key
// across concurrent callers.
func (c *WeakCache[K, V]) GetOrAdd(ctx context.Context, key *K, fill FillFunc[*K, V]) (V, error) {
	var zero V
	if key == nil {
		return zero, NewErrNilKey("GetOrAdd")
	}
	if value, ok := c.TryGetValue(key); ok {
		return value, nil
	}

	var adapted FillFunc[weak.Pointer[K], V]
	if fill != nil {
		adapted = func(ctx context.Context, _ weak.Pointer[K]) (V, error) {
			return fill(ctx, key)
		}
	}

	value, err := c.fills.getOrFill(ctx, weak.Make(key), adapted)
	runtime.KeepAlive(key)
	return value, err
}

// GetOrAddAsync is GetOrAdd running on its own goroutine. A cached value
// resolves the future immediately without starting one.
func (c *WeakCache[K, V]) GetOrAddAsync(ctx context.Context, key *K, fill FillFunc[*K, V]) *Future[V] {
	// The future must not pin the key, so errors identify it by address
	f := newFuture[V](fmt.Sprintf("%p", key))
	if key != nil {
		if value, ok := c.TryGetValue(key); ok {
			f.complete(value, nil)
			return f
		}
	}

	go func() {
		value, err := c.GetOrAdd(ctx, key, fill)
		f.complete(value, err)
	}()
	return f
}

// TryAdd associates value with key unless a value is already present.
func (c *WeakCache[K, V]) TryAdd(ctx context.Context, key *K, value V) (bool, error) {
	if key == nil {
		return false, NewErrNilKey("TryAdd")
	}
	added, err := c.fills.tryAdd(ctx, weak.Make(key), value)
	runtime.KeepAlive(key)
	return added, err
}

// TryRemove drops the entry for key.
func (c *WeakCache[K, V]) TryRemove(key *K) bool {
	if key == nil {
		return false
	}
	raw, ok := c.entries.LoadAndDelete(weak.Make(key))
	if !ok {
		return false
	}
	raw.(*weakEntry[V]).cleanup.Stop()
	atomic.AddInt64(&c.count, -1)
	return true
}

// Len returns the number of entries, including entries whose key was
// collected but whose cleanup has not run yet.
func (c *WeakCache[K, V]) Len() int {
	return int(atomic.LoadInt64(&c.count))
}

// Stats returns cache statistics.
func (c *WeakCache[K, V]) Stats() CacheStats {
	fills, fillErrors := c.fills.counters()
	return CacheStats{
		Hits:       uint64(atomic.LoadInt64(&c.hits)),   // #nosec G115 - stats counters are always positive
		Misses:     uint64(atomic.LoadInt64(&c.misses)), // #nosec G115 - stats counters are always positive
		Fills:      fills,
		FillErrors: fillErrors,
		Evictions:  uint64(atomic.LoadInt64(&c.evictions)), // #nosec G115 - stats counters are always positive
		Size:       c.Len(),
	}
}

func (c *WeakCache[K, V]) lookup(wp weak.Pointer[K]) (V, bool) {
	if raw, ok := c.entries.Load(wp); ok {
		return raw.(*weakEntry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *WeakCache[K, V]) store(wp weak.Pointer[K], value V) (V, bool) {
	key := wp.Value()
	if key == nil {
		// Key already unreachable: nobody can look this entry up again
		return value, true
	}

	e := &weakEntry[V]{value: value}
	e.cleanup = runtime.AddCleanup(key, c.evict, wp)
	actual, loaded := c.entries.LoadOrStore(wp, e)
	if loaded {
		e.cleanup.Stop()
		return actual.(*weakEntry[V]).value, false
	}
	atomic.AddInt64(&c.count, 1)
	runtime.KeepAlive(key)
	return value, true
}

// evict runs once key has been collected. It captures only the pointer so
// a cleanup never keeps a removed value reachable.
func (c *WeakCache[K, V]) evict(wp weak.Pointer[K]) {
	if _, ok := c.entries.LoadAndDelete(wp); ok {
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
		c.metrics.RecordEviction(1)
	}
}
