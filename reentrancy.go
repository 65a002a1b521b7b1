// reentrancy.go: fill scope tracking through context.Context
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"sync"
)

type fillScopeKey struct{}

// fillFrame records that a fill for (owner, key) is running somewhere up the
// call chain. Frames form a stack through the context, so a fill that hops
// goroutines keeps its marker.
//
// The frame's call chain owns the registry entry for key. Nested fills of
// the same key cannot wait on that entry, so they serialize on the frame's
// own lock instead: goroutines fanned out by one fill still run at most one
// nested fill per key at a time.
type fillFrame struct {
	owner  any
	key    any
	parent *fillFrame

	nestedOnce  sync.Once
	nestedLocks *LockRegistry[struct{}]
}

// nested returns the lock registry coordinating nested fills of f.key.
func (f *fillFrame) nested() *LockRegistry[struct{}] {
	f.nestedOnce.Do(func() {
		f.nestedLocks = newLockRegistry[struct{}](0)
	})
	return f.nestedLocks
}

// enterFill returns a context marking that a fill of key by owner is in progress.
func enterFill[K comparable](ctx context.Context, owner any, key K) context.Context {
	parent, _ := ctx.Value(fillScopeKey{}).(*fillFrame)
	return context.WithValue(ctx, fillScopeKey{}, &fillFrame{owner: owner, key: key, parent: parent})
}

// heldFrame returns the innermost frame in ctx filling key for owner, or nil
// when the calling chain does not hold key.
func heldFrame[K comparable](ctx context.Context, owner any, key K) *fillFrame {
	for f, _ := ctx.Value(fillScopeKey{}).(*fillFrame); f != nil; f = f.parent {
		if f.owner != owner {
			continue
		}
		if k, ok := f.key.(K); ok && k == key {
			return f
		}
	}
	return nil
}

// FillDepth returns how many cache fills enclose ctx. Zero means the caller
// is not running inside any mnemo fill function.
func FillDepth(ctx context.Context) int {
	n := 0
	for f, _ := ctx.Value(fillScopeKey{}).(*fillFrame); f != nil; f = f.parent {
		n++
	}
	return n
}
