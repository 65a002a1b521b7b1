// locks_test.go: tests for the per-key lock registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockRegistry_AcquireRelease(t *testing.T) {
	r := NewLockRegistry[string]()

	lock, won := r.Acquire("a")
	if !won {
		t.Fatal("first Acquire should win")
	}
	if lock.Key() != "a" {
		t.Errorf("Key() = %q", lock.Key())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	other, won := r.Acquire("a")
	if won || other != lock {
		t.Fatal("second Acquire should return the held lock")
	}

	if _, won := r.Acquire("b"); !won {
		t.Error("different keys must not contend")
	}

	r.Release(lock)
	r.Release(lock) // idempotent
	if _, ok := r.Holder("a"); ok {
		t.Error("released lock still registered")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	select {
	case <-lock.Done():
	default:
		t.Error("Done should be closed after Release")
	}
}

func TestKeyLock_WaitWakesAllWaiters(t *testing.T) {
	r := NewLockRegistry[int]()
	lock, _ := r.Acquire(1)

	const waiters = 8
	var woken int64
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, won := r.Acquire(1)
			if won {
				t.Error("waiter unexpectedly won")
				r.Release(l)
				return
			}
			if err := l.Wait(context.Background()); err == nil {
				atomic.AddInt64(&woken, 1)
			}
		}()
	}

	// Let waiters park
	time.Sleep(20 * time.Millisecond)
	r.Release(lock)
	wg.Wait()

	if woken != waiters {
		t.Errorf("woken = %d, want %d", woken, waiters)
	}
}

func TestKeyLock_WaitCancelled(t *testing.T) {
	r := NewLockRegistry[int]()
	lock, _ := r.Acquire(1)
	defer r.Release(lock)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := lock.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
	if _, ok := r.Holder(1); !ok {
		t.Error("a cancelled waiter must not remove the winner's lock")
	}
}

// Exactly one goroutine wins a contended key at any time.
func TestLockRegistry_MutualExclusion(t *testing.T) {
	r := NewLockRegistry[string]()

	var inside, maxInside, wins int64
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for {
					lock, won := r.Acquire("hot")
					if !won {
						_ = lock.Wait(context.Background())
						continue
					}
					n := atomic.AddInt64(&inside, 1)
					for {
						m := atomic.LoadInt64(&maxInside)
						if n <= m || atomic.CompareAndSwapInt64(&maxInside, m, n) {
							break
						}
					}
					atomic.AddInt64(&wins, 1)
					atomic.AddInt64(&inside, -1)
					r.Release(lock)
					break
				}
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("%d goroutines held the same key at once", maxInside)
	}
	if wins != 16*200 {
		t.Errorf("wins = %d", wins)
	}
	if r.Len() != 0 {
		t.Errorf("registry not empty: %d", r.Len())
	}
}

func TestLockRegistry_LosingCandidatesArePooled(t *testing.T) {
	r := NewLockRegistry[string]()
	lock, _ := r.Acquire("k")
	defer r.Release(lock)

	// Fast path returns the held lock without touching the pool
	for i := 0; i < 10; i++ {
		_, _ = r.Acquire("k")
	}
	if got := r.PoolStats().Constructed; got != 1 {
		t.Errorf("constructed = %d, want 1", got)
	}
}

func BenchmarkLockRegistry_Uncontended(b *testing.B) {
	r := NewLockRegistry[int]()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			lock, won := r.Acquire(i)
			if won {
				r.Release(lock)
			}
			i++
		}
	})
}
