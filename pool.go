// pool.go: lock-free slot pool for short-lived helper objects
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"sync/atomic"
)

// Pool is a fixed-size, lock-free pool of reusable *T instances.
//
// Allocate and Free go through a dedicated first slot for the common
// "take one, give it back" pattern; when that slot is busy they scan a fixed
// array of slots, claiming each cell with compare-and-swap so an instance is
// never handed out twice. Unlike sync.Pool, pooled instances are never
// dropped by the garbage collector, and a full pool simply drops what it
// cannot hold.
//
// The zero value is not usable; construct with NewPool.
type Pool[T any] struct {
	newFn func() *T

	first atomic.Pointer[T]
	slots []atomic.Pointer[T]

	// Atomic statistics counters
	reused      int64
	constructed int64
	dropped     int64
}

// PoolStats reports how a pool served its callers.
type PoolStats struct {
	// Reused is the number of Allocate calls served from a pooled instance
	Reused uint64

	// Constructed is the number of Allocate calls that built a fresh instance
	Constructed uint64

	// Dropped is the number of Free calls that found no empty slot
	Dropped uint64
}

// NewPool creates a pool with size backing slots (plus the dedicated first
// slot). newFn builds fresh instances when the pool is empty; if nil, new(T)
// is used. A negative size is treated as zero.
func NewPool[T any](size int, newFn func() *T) *Pool[T] {
	if size < 0 {
		size = 0
	}
	if newFn == nil {
		newFn = func() *T { return new(T) }
	}
	return &Pool[T]{
		newFn: newFn,
		slots: make([]atomic.Pointer[T], size),
	}
}

// Allocate returns a pooled instance, or a freshly constructed one when the
// pool is empty. It never fails.
func (p *Pool[T]) Allocate() *T {
	// Fast path: the dedicated slot
	if inst := p.first.Load(); inst != nil && p.first.CompareAndSwap(inst, nil) {
		atomic.AddInt64(&p.reused, 1)
		return inst
	}

	for i := range p.slots {
		slot := &p.slots[i]
		inst := slot.Load()
		if inst == nil {
			continue
		}
		if slot.CompareAndSwap(inst, nil) {
			atomic.AddInt64(&p.reused, 1)
			return inst
		}
	}

	atomic.AddInt64(&p.constructed, 1)
	return p.newFn()
}

// Free returns an instance for reuse. It is best effort: when every slot is
// occupied the instance is dropped and left to the garbage collector.
// The caller must not use inst after Free.
func (p *Pool[T]) Free(inst *T) {
	if inst == nil {
		return
	}

	if p.first.Load() == nil && p.first.CompareAndSwap(nil, inst) {
		return
	}

	for i := range p.slots {
		slot := &p.slots[i]
		if slot.Load() == nil && slot.CompareAndSwap(nil, inst) {
			return
		}
	}

	atomic.AddInt64(&p.dropped, 1)
}

// Lease allocates an instance wrapped in a scoped handle.
// Typical use:
//
//	l := pool.Lease()
//	defer l.Release()
func (p *Pool[T]) Lease() *Lease[T] {
	return &Lease[T]{value: p.Allocate(), free: p.Free}
}

// Stats returns pool statistics.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Reused:      uint64(atomic.LoadInt64(&p.reused)),      // #nosec G115 - counters are always positive
		Constructed: uint64(atomic.LoadInt64(&p.constructed)), // #nosec G115 - counters are always positive
		Dropped:     uint64(atomic.LoadInt64(&p.dropped)),     // #nosec G115 - counters are always positive
	}
}

// Size returns the number of slots, including the dedicated first slot.
func (p *Pool[T]) Size() int {
	return len(p.slots) + 1
}

// Lease is a scoped handle on a pooled instance. Release returns the
// instance to its pool exactly once, however many times it is called.
type Lease[T any] struct {
	value    *T
	free     func(*T)
	released atomic.Bool
}

// Value returns the leased instance, or nil after Release.
func (l *Lease[T]) Value() *T {
	if l.released.Load() {
		return nil
	}
	return l.value
}

// Release returns the instance to the pool. Subsequent calls are no-ops.
func (l *Lease[T]) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.free(l.value)
}

// Recyclable is implemented by pooled types that must be reset around reuse.
// Recycle runs when an instance is handed out, CleanUp when it comes back.
type Recyclable interface {
	Recycle()
	CleanUp()
}

// RecyclingPool is a Pool whose instances implement Recyclable.
// P is the pointer type of T, e.g. RecyclingPool[buffer, *buffer].
type RecyclingPool[T any, P interface {
	*T
	Recyclable
}] struct {
	pool *Pool[T]
}

// NewRecyclingPool creates a recycling pool with size backing slots.
func NewRecyclingPool[T any, P interface {
	*T
	Recyclable
}](size int) *RecyclingPool[T, P] {
	return &RecyclingPool[T, P]{pool: NewPool[T](size, nil)}
}

// Allocate returns a recycled instance, calling its Recycle hook first.
func (p *RecyclingPool[T, P]) Allocate() P {
	inst := P(p.pool.Allocate())
	inst.Recycle()
	return inst
}

// Free calls the CleanUp hook and returns the instance to the pool.
func (p *RecyclingPool[T, P]) Free(inst P) {
	if inst == nil {
		return
	}
	inst.CleanUp()
	p.pool.Free((*T)(inst))
}

// Lease allocates a recycled instance wrapped in a scoped handle whose
// Release runs CleanUp and frees it exactly once.
func (p *RecyclingPool[T, P]) Lease() *Lease[T] {
	return &Lease[T]{
		value: (*T)(p.Allocate()),
		free:  func(v *T) { p.Free(P(v)) },
	}
}

// Stats returns statistics of the underlying pool.
func (p *RecyclingPool[T, P]) Stats() PoolStats {
	return p.pool.Stats()
}
