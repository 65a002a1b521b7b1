// config.go: configuration for mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"time"
)

// Config holds configuration parameters shared by mnemo caches and pools.
// Each component reads only the fields it needs.
type Config struct {
	// RotationPeriod is how long a TimedCache keeps a generation "recent"
	// before rotating. Default: DefaultRotationPeriod.
	RotationPeriod time.Duration

	// RotationThreshold is the number of entries in the recent generation
	// that triggers a CountPolicy rotation. Default: DefaultRotationThreshold.
	RotationThreshold int

	// Capacity is the number of entries a PathCache keeps before scheduling
	// a background cleanup. Default: DefaultCapacity.
	Capacity int

	// PoolSize is the number of slots of the internal lock-handle pools.
	// Default: DefaultPoolSize.
	PoolSize int

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used.
	Logger Logger

	// TimeProvider provides current time for time-gated rotation.
	// If nil, the monotonic system clock is used.
	TimeProvider TimeProvider

	// MetricsCollector receives lookup, fill and eviction metrics.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

// Validate checks configuration parameters and applies sensible defaults.
// Returns nil (no actual validation errors, only normalization).
//
// This method is automatically called by every constructor, so you
// typically don't need to call it manually.
//
// Default values applied:
//   - RotationPeriod: DefaultRotationPeriod if <= 0
//   - RotationThreshold: DefaultRotationThreshold if <= 0
//   - Capacity: DefaultCapacity if <= 0
//   - PoolSize: DefaultPoolSize if <= 0
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.RotationPeriod <= 0 {
		c.RotationPeriod = DefaultRotationPeriod
	}

	if c.RotationThreshold <= 0 {
		c.RotationThreshold = DefaultRotationThreshold
	}

	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}

	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RotationPeriod:    DefaultRotationPeriod,
		RotationThreshold: DefaultRotationThreshold,
		Capacity:          DefaultCapacity,
		PoolSize:          DefaultPoolSize,
		Logger:            NoOpLogger{},
		TimeProvider:      &systemTimeProvider{},
		MetricsCollector:  NoOpMetricsCollector{},
	}
}

// clockOrigin anchors systemTimeProvider. It carries a monotonic reading,
// so wall clock steps never move the rotation clock.
var clockOrigin = time.Now()

// systemTimeProvider is the default rotation clock: nanoseconds elapsed on
// the monotonic clock since the package was initialized.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return int64(time.Since(clockOrigin))
}
