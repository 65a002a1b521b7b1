// future.go: result handle for asynchronous fills
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"sync"
)

// Future is the pending result of an asynchronous GetOrAdd.
type Future[V any] struct {
	key  any
	done chan struct{}
	once sync.Once

	value V
	err   error
}

func newFuture[V any](key any) *Future[V] {
	return &Future[V]{key: key, done: make(chan struct{})}
}

func (f *Future[V]) complete(value V, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the result is available.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx ends. Giving up on the
// wait does not cancel the fill; use the context passed to GetOrAddAsync
// for that.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero V
		return zero, NewErrFillCancelled(f.key, ctx.Err())
	}
}

// Result returns the result without blocking. ok is false while the fill
// is still running.
func (f *Future[V]) Result() (value V, ok bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero V
		return zero, false, nil
	}
}
