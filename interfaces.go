// interfaces.go: public interfaces for mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "context"

// FillFunc computes the value for a key on a cache miss.
// The context carries the reentrancy marker of the calling cache: pass it on
// when the fill needs to query the same cache again.
type FillFunc[K any, V any] func(ctx context.Context, key K) (V, error)

// CacheStats provides statistics about cache activity.
type CacheStats struct {
	// Hits is the number of lookups served from the cache
	Hits uint64

	// Misses is the number of lookups that found nothing usable
	Misses uint64

	// Fills is the number of fill functions that completed successfully
	Fills uint64

	// FillErrors is the number of fill functions that failed, panicked or were cancelled
	FillErrors uint64

	// Rotations is the number of generation swaps (generational caches only)
	Rotations uint64

	// Evictions is the number of entries dropped by rotation, cleanup or validation
	Evictions uint64

	// Size is the current number of entries
	Size int
}

// HitRatio returns the hit ratio as a percentage (0-100).
// Returns 0.0 if no lookup has been performed yet.
func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Logger defines a minimal logging interface.
// Implementations should use structured logging.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides the current time for rotation decisions.
type TimeProvider interface {
	// Now returns the current time in nanoseconds from a fixed origin.
	// Only differences between readings are used, so the origin is free,
	// but readings must never go backwards. This method must be very fast
	// and allocation-free.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache metrics.
// Implementations can forward to OpenTelemetry, Prometheus or StatsD.
// All methods must be safe for concurrent use and cheap: they run on the
// lookup path.
type MetricsCollector interface {
	// RecordGet records a lookup with its latency and hit/miss result.
	RecordGet(latencyNs int64, hit bool)

	// RecordFill records a fill function execution.
	// failed is true when the fill returned an error, panicked or was cancelled.
	RecordFill(latencyNs int64, failed bool)

	// RecordRotation records a generation swap and how many entries the
	// retired generation still held.
	RecordRotation(evicted int)

	// RecordEviction records entries removed outside of rotation
	// (validation failures, capacity cleanup, collected weak keys).
	RecordEviction(n int)
}

// NoOpMetricsCollector is a metrics collector that does nothing.
type NoOpMetricsCollector struct{}

// RecordGet does nothing.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordFill does nothing.
func (NoOpMetricsCollector) RecordFill(latencyNs int64, failed bool) {}

// RecordRotation does nothing.
func (NoOpMetricsCollector) RecordRotation(evicted int) {}

// RecordEviction does nothing.
func (NoOpMetricsCollector) RecordEviction(n int) {}

// Tunable is implemented by components whose runtime parameters can be
// changed by HotConfig without rebuilding them. HotConfig only sets the
// fields present in the configuration source; zero fields are unset and
// must leave the component unchanged.
type Tunable interface {
	ApplyConfig(cfg Config)
}
