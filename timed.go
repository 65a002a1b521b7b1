// timed.go: time-gated generational cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "time"

// TimedCache is a GenerationalCache that rotates once per rotation period.
// The period clock restarts after every rotation, so an entry read at least
// once per period is never evicted.
type TimedCache[K comparable, V, T any] struct {
	*GenerationalCache[K, V, T]
	policy *TimePolicy
}

// NewTimedCache creates a cache rotating every cfg.RotationPeriod, measured
// with cfg.TimeProvider.
func NewTimedCache[K comparable, V, T any](cfg Config, hooks Hooks[K, V, T]) *TimedCache[K, V, T] {
	_ = cfg.Validate()
	policy := NewTimePolicy(cfg.RotationPeriod, cfg.TimeProvider)
	return &TimedCache[K, V, T]{
		GenerationalCache: NewGenerationalCache(cfg, policy, hooks),
		policy:            policy,
	}
}

// RotationPeriod returns the current rotation period.
func (c *TimedCache[K, V, T]) RotationPeriod() time.Duration {
	return c.policy.Period()
}

// SetRotationPeriod changes the rotation period for subsequent checks.
func (c *TimedCache[K, V, T]) SetRotationPeriod(period time.Duration) error {
	return c.policy.SetPeriod(period)
}
