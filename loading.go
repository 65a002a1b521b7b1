// loading.go: fill coordination shared by every mnemo cache
//
// This file implements the winner/waiter protocol on top of LockRegistry:
// a miss acquires the per-key lock, the winner runs the fill function once
// and stores the result, losers wait for the release and re-check the cache.
// Calls whose own chain already holds the key coordinate on the enclosing
// fill frame instead of the registry.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// fillCoordinator binds a cache's lookup/store primitives to a lock registry.
// owner identifies the cache in reentrancy frames.
type fillCoordinator[K comparable, V any] struct {
	owner any
	locks *LockRegistry[K]

	// lookup returns a usable stored value for key.
	lookup func(key K) (V, bool)

	// store inserts value unless key is already present (first insert wins).
	// It returns the value now stored and whether this call inserted it.
	store func(key K, value V) (V, bool)

	logger  Logger
	metrics MetricsCollector

	fills      int64
	fillErrors int64
}

// getOrFill returns the stored value for key, running fill at most once per
// absence-to-presence transition.
func (f *fillCoordinator[K, V]) getOrFill(ctx context.Context, key K, fill FillFunc[K, V]) (V, error) {
	var zero V

	for {
		if value, ok := f.lookup(key); ok {
			return value, nil
		}

		if fill == nil {
			return zero, NewErrInvalidFill(key)
		}

		// Check context before starting
		if err := ctx.Err(); err != nil {
			return zero, NewErrFillCancelled(key, err)
		}

		// Our own chain holds the registry entry for key: waiting on it would
		// deadlock, so nested fills of key serialize on the frame's lock
		if frame := heldFrame(ctx, f.owner, key); frame != nil {
			nested := frame.nested()
			lock, won := nested.Acquire(struct{}{})
			if !won {
				if err := lock.Wait(ctx); err != nil {
					return zero, NewErrFillCancelled(key, err)
				}
				continue
			}
			return f.fillAsWinner(ctx, key, fill, func() { nested.Release(lock) })
		}

		lock, won := f.locks.Acquire(key)
		if !won {
			if err := lock.Wait(ctx); err != nil {
				return zero, NewErrFillCancelled(key, err)
			}
			// Winner finished (or failed): look again, maybe become the next winner
			continue
		}

		return f.fillAsWinner(ctx, key, fill, func() { f.locks.Release(lock) })
	}
}

// fillAsWinner runs the fill while holding a lock. release runs on every
// exit path, including panics inside fill. A nested fill may have stored
// first; its value is kept.
func (f *fillCoordinator[K, V]) fillAsWinner(ctx context.Context, key K, fill FillFunc[K, V], release func()) (V, error) {
	defer release()

	// The previous winner may have stored between our lookup and Acquire
	if value, ok := f.lookup(key); ok {
		return value, nil
	}

	value, err := f.invoke(ctx, key, fill)
	if err != nil {
		var zero V
		return zero, err
	}

	stored, _ := f.store(key, value)
	return stored, nil
}

// tryAdd stores value for key under the same coordination as getOrFill.
// It returns false when the key is present or a concurrent winner filled it.
func (f *fillCoordinator[K, V]) tryAdd(ctx context.Context, key K, value V) (bool, error) {
	for {
		if _, ok := f.lookup(key); ok {
			return false, nil
		}

		if heldFrame(ctx, f.owner, key) != nil {
			_, inserted := f.store(key, value)
			return inserted, nil
		}

		lock, won := f.locks.Acquire(key)
		if !won {
			if err := lock.Wait(ctx); err != nil {
				return false, NewErrFillCancelled(key, err)
			}
			continue
		}

		inserted := func() bool {
			defer f.locks.Release(lock)
			if _, ok := f.lookup(key); ok {
				return false
			}
			_, inserted := f.store(key, value)
			return inserted
		}()
		return inserted, nil
	}
}

// invoke runs fill inside a reentrancy frame with panic recovery.
func (f *fillCoordinator[K, V]) invoke(ctx context.Context, key K, fill FillFunc[K, V]) (value V, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			var zero V
			value = zero
			err = NewErrPanicRecovered(fmt.Sprintf("fill:%v", key), r)
			f.logger.Error("panic recovered in fill function", "key", key, "panic", r)
		}

		failed := err != nil
		if failed {
			atomic.AddInt64(&f.fillErrors, 1)
		} else {
			atomic.AddInt64(&f.fills, 1)
		}
		f.metrics.RecordFill(time.Since(start).Nanoseconds(), failed)
	}()

	value, err = fill(enterFill(ctx, f.owner, key), key)
	if err != nil {
		f.logger.Debug("fill function failed", "key", key, "error", err)
		var zero V
		return zero, fillError(ctx, key, err)
	}
	return value, nil
}

// counters returns (fills, fillErrors).
func (f *fillCoordinator[K, V]) counters() (uint64, uint64) {
	return uint64(atomic.LoadInt64(&f.fills)), // #nosec G115 - counters are always positive
		uint64(atomic.LoadInt64(&f.fillErrors)) // #nosec G115 - counters are always positive
}
