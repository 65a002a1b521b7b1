// generational.go: two-generation rotating memoization cache
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
)

// Hooks customizes per-entry metadata of a GenerationalCache.
//
// Tag stamps an entry when it is stored (for example with a version or a
// timestamp). Validate is called each time an entry is found in the old
// generation; returning false purges it and the lookup becomes a miss.
// Both may be nil: entries then carry the zero tag and are always valid.
type Hooks[K comparable, V, T any] struct {
	Tag      func(key K, value V) T
	Validate func(key K, value V, tag T) bool
}

// genEntry is immutable once stored.
type genEntry[V, T any] struct {
	value V
	tag   T
}

// generations is the recent/old pair. The pair itself is never mutated:
// rotation publishes a new one through a single atomic pointer store, so
// readers never observe a half-updated pair.
type generations struct {
	recent *sync.Map
	old    *sync.Map // nil until the first rotation

	recentLen atomic.Int64
	oldLen    atomic.Int64
}

// GenerationalCache memoizes values in two generations, "recent" and "old".
//
// Lookups check recent first, then old; a valid hit in old is promoted into
// recent. Instead of evicting entries one by one, the cache rotates as a
// whole when its RotationPolicy says so: old is dropped, recent becomes
// old, and an empty map becomes recent. Entries read at least once per
// rotation period survive; untouched entries disappear after two rotations.
// Bookkeeping is O(1) and memory stays around twice the working set.
//
// Misses are filled through a per-key lock registry, so a fill function runs
// at most once per key per absence-to-presence transition.
type GenerationalCache[K comparable, V, T any] struct {
	gens     atomic.Pointer[generations]
	rotating atomic.Bool

	policy RotationPolicy
	hooks  Hooks[K, V, T]
	fills  *fillCoordinator[K, V]

	logger  Logger
	metrics MetricsCollector

	// Atomic statistics counters
	hits      int64
	misses    int64
	rotations int64
	evictions int64
}

// NewGenerationalCache creates a cache rotated by policy. A nil policy
// means NeverRotate.
func NewGenerationalCache[K comparable, V, T any](cfg Config, policy RotationPolicy, hooks Hooks[K, V, T]) *GenerationalCache[K, V, T] {
	_ = cfg.Validate()
	if policy == nil {
		policy = NeverRotate
	}

	c := &GenerationalCache[K, V, T]{
		policy:  policy,
		hooks:   hooks,
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	c.gens.Store(&generations{recent: &sync.Map{}})

	c.fills = &fillCoordinator[K, V]{
		owner:   c,
		locks:   newLockRegistry[K](cfg.PoolSize),
		lookup:  c.lookup,
		store:   c.store,
		logger:  cfg.Logger,
		metrics: cfg.MetricsCollector,
	}
	return c
}

// NewCountGatedCache creates a GenerationalCache that rotates whenever the
// recent generation reaches cfg.RotationThreshold entries.
func NewCountGatedCache[K comparable, V, T any](cfg Config, hooks Hooks[K, V, T]) *GenerationalCache[K, V, T] {
	_ = cfg.Validate()
	return NewGenerationalCache(cfg, NewCountPolicy(cfg.RotationThreshold), hooks)
}

// TryGetValue returns the value for key if present and valid.
// It never blocks and never runs a fill function.
func (c *GenerationalCache[K, V, T]) TryGetValue(key K) (V, bool) {
	start := time.Now()
	value, ok := c.lookup(key)
	if ok {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	c.metrics.RecordGet(time.Since(start).Nanoseconds(), ok)
	return value, ok
}

// GetOrAdd returns the cached value for key, or runs fill to produce it.
//
// Concurrent callers for the same missing key wait for a single fill. A fill
// that calls GetOrAdd for its own key with the context it received runs the
// nested fill directly instead of deadlocking; whichever result is stored
// first is kept. Fill errors are returned wrapped and are never cached.
func (c *GenerationalCache[K, V, T]) GetOrAdd(ctx context.Context, key K, fill FillFunc[K, V]) (V, error) {
	c.maybeRotate()
	if value, ok := c.TryGetValue(key); ok {
		return value, nil
	}
	return c.fills.getOrFill(ctx, key, fill)
}

// TryAdd stores value for key unless the key is already cached or a
// concurrent fill populated it first, in which case it returns false.
func (c *GenerationalCache[K, V, T]) TryAdd(ctx context.Context, key K, value V) (bool, error) {
	c.maybeRotate()
	return c.fills.tryAdd(ctx, key, value)
}

// TryRemove removes key from whichever generation holds it.
func (c *GenerationalCache[K, V, T]) TryRemove(key K) bool {
	g := c.gens.Load()
	if _, ok := g.recent.LoadAndDelete(key); ok {
		g.recentLen.Add(-1)
		return true
	}
	if g.old != nil {
		if _, ok := g.old.LoadAndDelete(key); ok {
			g.oldLen.Add(-1)
			return true
		}
	}
	return false
}

// Rotate forces a generation swap regardless of the policy. It returns
// false if another goroutine was rotating at the same time.
func (c *GenerationalCache[K, V, T]) Rotate() bool {
	return c.rotate(true)
}

// Clear drops both generations.
func (c *GenerationalCache[K, V, T]) Clear() {
	c.gens.Store(&generations{recent: &sync.Map{}})
}

// Len returns the approximate number of entries across both generations.
// Writes racing with a rotation may be counted in the wrong generation.
func (c *GenerationalCache[K, V, T]) Len() int {
	g := c.gens.Load()
	n := g.recentLen.Load() + g.oldLen.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Stats returns cache statistics.
func (c *GenerationalCache[K, V, T]) Stats() CacheStats {
	fills, fillErrors := c.fills.counters()
	return CacheStats{
		Hits:       uint64(atomic.LoadInt64(&c.hits)),   // #nosec G115 - stats counters are always positive
		Misses:     uint64(atomic.LoadInt64(&c.misses)), // #nosec G115 - stats counters are always positive
		Fills:      fills,
		FillErrors: fillErrors,
		Rotations:  uint64(atomic.LoadInt64(&c.rotations)), // #nosec G115 - stats counters are always positive
		Evictions:  uint64(atomic.LoadInt64(&c.evictions)), // #nosec G115 - stats counters are always positive
		Size:       c.Len(),
	}
}

// ApplyConfig implements Tunable by forwarding to the rotation policy when
// the policy is itself tunable.
func (c *GenerationalCache[K, V, T]) ApplyConfig(cfg Config) {
	if t, ok := c.policy.(Tunable); ok {
		t.ApplyConfig(cfg)
	}
}

// lookup is TryGetValue without statistics.
func (c *GenerationalCache[K, V, T]) lookup(key K) (V, bool) {
	var zero V
	g := c.gens.Load()

	if raw, ok := g.recent.Load(key); ok {
		return raw.(*genEntry[V, T]).value, true
	}
	if g.old == nil {
		return zero, false
	}

	raw, ok := g.old.Load(key)
	if !ok {
		return zero, false
	}
	e := raw.(*genEntry[V, T])

	// Validation is re-run on every old hit, never cached
	if c.hooks.Validate != nil && !c.hooks.Validate(key, e.value, e.tag) {
		if g.old.CompareAndDelete(key, e) {
			g.oldLen.Add(-1)
			atomic.AddInt64(&c.evictions, 1)
			c.metrics.RecordEviction(1)
		}
		return zero, false
	}

	// Promote; if recent was filled meanwhile, that value wins
	actual, loaded := g.recent.LoadOrStore(key, e)
	if !loaded {
		g.recentLen.Add(1)
	}
	if g.old.CompareAndDelete(key, e) {
		g.oldLen.Add(-1)
	}
	return actual.(*genEntry[V, T]).value, true
}

// store inserts into recent unless recent already holds key.
func (c *GenerationalCache[K, V, T]) store(key K, value V) (V, bool) {
	e := &genEntry[V, T]{value: value}
	if c.hooks.Tag != nil {
		e.tag = c.hooks.Tag(key, value)
	}

	g := c.gens.Load()
	actual, loaded := g.recent.LoadOrStore(key, e)
	if loaded {
		return actual.(*genEntry[V, T]).value, false
	}
	g.recentLen.Add(1)

	// Keep the key in a single generation (drops a stale old entry)
	if g.old != nil {
		if _, ok := g.old.LoadAndDelete(key); ok {
			g.oldLen.Add(-1)
		}
	}
	return value, true
}

func (c *GenerationalCache[K, V, T]) maybeRotate() {
	if c.rotating.Load() {
		return
	}
	if c.policy.ShouldRotate(int(c.gens.Load().recentLen.Load())) {
		c.rotate(false)
	}
}

// rotate swaps the generation pair. Only one goroutine rotates at a time;
// the others keep using the pair they loaded.
func (c *GenerationalCache[K, V, T]) rotate(force bool) bool {
	if !c.rotating.CompareAndSwap(false, true) {
		return false
	}
	defer c.rotating.Store(false)

	cur := c.gens.Load()
	// Someone may have rotated between our check and the flag
	if !force && !c.policy.ShouldRotate(int(cur.recentLen.Load())) {
		return false
	}

	next := &generations{recent: &sync.Map{}, old: cur.recent}
	next.oldLen.Store(cur.recentLen.Load())
	c.gens.Store(next)
	c.policy.Rotated()

	evicted := 0
	if cur.old != nil {
		evicted = int(cur.oldLen.Load())
		cur.old.Clear()
	}
	if evicted < 0 {
		evicted = 0
	}

	atomic.AddInt64(&c.rotations, 1)
	atomic.AddInt64(&c.evictions, int64(evicted))
	c.metrics.RecordRotation(evicted)
	c.logger.Debug("generation rotated", "evicted", evicted, "retained", next.oldLen.Load())
	return true
}
