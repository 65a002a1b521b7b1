// policy.go: rotation triggers for generational caches
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"sync/atomic"
	"time"
)

// RotationPolicy decides when a GenerationalCache retires its old
// generation. ShouldRotate is called opportunistically on every GetOrAdd and
// TryAdd, so it must be cheap; Rotated is called once after each swap.
type RotationPolicy interface {
	ShouldRotate(recentLen int) bool
	Rotated()
}

// TimePolicy rotates when the clock passes the last rotation plus a period.
type TimePolicy struct {
	clock  TimeProvider
	period int64 // nanoseconds
	last   int64 // nanoseconds
}

// NewTimePolicy creates a time-gated policy. A nil clock uses the monotonic
// system clock; a non-positive period uses DefaultRotationPeriod.
func NewTimePolicy(period time.Duration, clock TimeProvider) *TimePolicy {
	if clock == nil {
		clock = &systemTimeProvider{}
	}
	if period <= 0 {
		period = DefaultRotationPeriod
	}
	return &TimePolicy{
		clock:  clock,
		period: int64(period),
		last:   clock.Now(),
	}
}

// ShouldRotate reports whether the rotation period has elapsed.
func (p *TimePolicy) ShouldRotate(int) bool {
	return p.clock.Now() > atomic.LoadInt64(&p.last)+atomic.LoadInt64(&p.period)
}

// Rotated resets the clock to now.
func (p *TimePolicy) Rotated() {
	atomic.StoreInt64(&p.last, p.clock.Now())
}

// Period returns the current rotation period.
func (p *TimePolicy) Period() time.Duration {
	return time.Duration(atomic.LoadInt64(&p.period))
}

// SetPeriod changes the rotation period. Non-positive values are rejected.
func (p *TimePolicy) SetPeriod(period time.Duration) error {
	if period <= 0 {
		return NewErrInvalidRotationPeriod(period)
	}
	atomic.StoreInt64(&p.period, int64(period))
	return nil
}

// ApplyConfig implements Tunable. An unset period is ignored.
func (p *TimePolicy) ApplyConfig(cfg Config) {
	if cfg.RotationPeriod > 0 {
		_ = p.SetPeriod(cfg.RotationPeriod)
	}
}

// CountPolicy rotates once the recent generation holds threshold entries.
type CountPolicy struct {
	threshold int64
}

// NewCountPolicy creates a size-gated policy. A non-positive threshold uses
// DefaultRotationThreshold.
func NewCountPolicy(threshold int) *CountPolicy {
	if threshold <= 0 {
		threshold = DefaultRotationThreshold
	}
	return &CountPolicy{threshold: int64(threshold)}
}

// ShouldRotate reports whether the recent generation reached the threshold.
func (p *CountPolicy) ShouldRotate(recentLen int) bool {
	return int64(recentLen) >= atomic.LoadInt64(&p.threshold)
}

// Rotated does nothing: the fresh generation starts empty.
func (p *CountPolicy) Rotated() {}

// Threshold returns the current threshold.
func (p *CountPolicy) Threshold() int {
	return int(atomic.LoadInt64(&p.threshold))
}

// ApplyConfig implements Tunable.
func (p *CountPolicy) ApplyConfig(cfg Config) {
	if cfg.RotationThreshold > 0 {
		atomic.StoreInt64(&p.threshold, int64(cfg.RotationThreshold))
	}
}

type neverRotate struct{}

func (neverRotate) ShouldRotate(int) bool { return false }
func (neverRotate) Rotated()              {}

// NeverRotate is a policy that leaves rotation to explicit Rotate calls.
var NeverRotate RotationPolicy = neverRotate{}
