// Package mnemo provides concurrency-safe memoization caches and lock-free
// object pools for pipelines that recompute the same values from many
// goroutines at once.
//
// Example usage:
//
//	cache := mnemo.NewTimedCache[string, *Symbol, struct{}](mnemo.Config{
//		RotationPeriod: time.Minute,
//	}, mnemo.Hooks[string, *Symbol, struct{}]{})
//
//	sym, err := cache.GetOrAdd(ctx, "pkg.Func", resolveSymbol)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "time"

const (
	// Version of the mnemo library
	Version = "v0.1.0-dev"

	// DefaultRotationPeriod is how long a generation stays "recent" in a TimedCache
	DefaultRotationPeriod = time.Minute

	// DefaultRotationThreshold is the recent generation size that triggers a CountPolicy rotation
	DefaultRotationThreshold = 10_000

	// DefaultCapacity is the default number of entries held by a PathCache
	DefaultCapacity = 1_000

	// DefaultPoolSize is the default number of slots in internal pools
	DefaultPoolSize = 16

	// DefaultShardCount is the number of shards used by PathCache
	DefaultShardCount = 16
)
