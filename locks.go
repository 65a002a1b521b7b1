// locks.go: per-key lock registry used to serialize fills of the same key
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"sync"
	"sync/atomic"
)

// KeyLock is the exclusive wait handle for one key of a LockRegistry.
// The goroutine that installed it (the winner) owns it until Release;
// every other goroutine can only Wait on it.
type KeyLock[K comparable] struct {
	key      K
	done     chan struct{} // closed on release, broadcasts to all waiters
	released atomic.Bool
}

// Key returns the key this lock guards.
func (l *KeyLock[K]) Key() K {
	return l.key
}

// Done returns a channel that is closed when the lock is released.
func (l *KeyLock[K]) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the winner releases the lock or ctx ends.
// It returns ctx.Err() in the latter case. A waiter that returns nil must
// re-check the cache: the winner may have stored a value, or failed.
func (l *KeyLock[K]) Wait(ctx context.Context) error {
	// Already released: don't enter select
	select {
	case <-l.done:
		return nil
	default:
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LockRegistry maps keys to exclusive wait handles so that concurrent fills
// of the same key are serialized while different keys proceed independently.
//
// Entries are installed with an atomic insert-if-absent: exactly one
// candidate becomes "the" lock for a key. Candidates that lose the race are
// never published, so they go back to a slot pool and are reused by the
// next contender instead of being reallocated.
type LockRegistry[K comparable] struct {
	locks sync.Map // K -> *KeyLock[K]
	pool  *Pool[KeyLock[K]]
	held  int64
}

// NewLockRegistry creates an empty registry.
func NewLockRegistry[K comparable]() *LockRegistry[K] {
	return newLockRegistry[K](DefaultPoolSize)
}

func newLockRegistry[K comparable](poolSize int) *LockRegistry[K] {
	return &LockRegistry[K]{
		pool: NewPool(poolSize, func() *KeyLock[K] {
			return &KeyLock[K]{done: make(chan struct{})}
		}),
	}
}

// Acquire returns the lock for key. The boolean is true when the caller
// installed the lock and is the winner: it must call Release exactly when
// its work is done, typically with defer. When false, another goroutine
// holds the lock and the caller should Wait on it.
func (r *LockRegistry[K]) Acquire(key K) (*KeyLock[K], bool) {
	// Fast path: someone is already filling this key
	if existing, ok := r.locks.Load(key); ok {
		return existing.(*KeyLock[K]), false
	}

	candidate := r.pool.Allocate()
	candidate.key = key

	actual, loaded := r.locks.LoadOrStore(key, candidate)
	if loaded {
		// Lost the race; the candidate was never visible to anyone else
		var zero K
		candidate.key = zero
		r.pool.Free(candidate)
		return actual.(*KeyLock[K]), false
	}

	atomic.AddInt64(&r.held, 1)
	return candidate, true
}

// Release removes the lock from the registry and wakes every waiter.
// It is safe to call more than once; only the first call has an effect.
func (r *LockRegistry[K]) Release(lock *KeyLock[K]) {
	if lock == nil || !lock.released.CompareAndSwap(false, true) {
		return
	}
	// Unpublish before broadcasting so woken waiters see a clean registry
	r.locks.CompareAndDelete(lock.key, lock)
	atomic.AddInt64(&r.held, -1)
	close(lock.done)
}

// Holder returns the lock currently installed for key, if any.
func (r *LockRegistry[K]) Holder(key K) (*KeyLock[K], bool) {
	v, ok := r.locks.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*KeyLock[K]), true
}

// Len returns the number of keys currently locked.
func (r *LockRegistry[K]) Len() int {
	return int(atomic.LoadInt64(&r.held))
}

// PoolStats returns statistics of the candidate handle pool.
func (r *LockRegistry[K]) PoolStats() PoolStats {
	return r.pool.Stats()
}
