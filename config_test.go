// config_test.go: unit tests for mnemo configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   Config
	}{
		{
			name:   "empty config uses defaults",
			config: Config{},
			want: Config{
				RotationPeriod:    DefaultRotationPeriod,
				RotationThreshold: DefaultRotationThreshold,
				Capacity:          DefaultCapacity,
				PoolSize:          DefaultPoolSize,
			},
		},
		{
			name: "negative values use defaults",
			config: Config{
				RotationPeriod:    -time.Second,
				RotationThreshold: -1,
				Capacity:          -5,
				PoolSize:          -2,
			},
			want: Config{
				RotationPeriod:    DefaultRotationPeriod,
				RotationThreshold: DefaultRotationThreshold,
				Capacity:          DefaultCapacity,
				PoolSize:          DefaultPoolSize,
			},
		},
		{
			name: "explicit values are kept",
			config: Config{
				RotationPeriod:    5 * time.Second,
				RotationThreshold: 10,
				Capacity:          3,
				PoolSize:          4,
			},
			want: Config{
				RotationPeriod:    5 * time.Second,
				RotationThreshold: 10,
				Capacity:          3,
				PoolSize:          4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			if cfg.RotationPeriod != tt.want.RotationPeriod {
				t.Errorf("RotationPeriod = %v, want %v", cfg.RotationPeriod, tt.want.RotationPeriod)
			}
			if cfg.RotationThreshold != tt.want.RotationThreshold {
				t.Errorf("RotationThreshold = %d, want %d", cfg.RotationThreshold, tt.want.RotationThreshold)
			}
			if cfg.Capacity != tt.want.Capacity {
				t.Errorf("Capacity = %d, want %d", cfg.Capacity, tt.want.Capacity)
			}
			if cfg.PoolSize != tt.want.PoolSize {
				t.Errorf("PoolSize = %d, want %d", cfg.PoolSize, tt.want.PoolSize)
			}
			if cfg.Logger == nil {
				t.Error("Logger should be set")
			}
			if cfg.TimeProvider == nil {
				t.Error("TimeProvider should be set")
			}
			if cfg.MetricsCollector == nil {
				t.Error("MetricsCollector should be set")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RotationPeriod != DefaultRotationPeriod {
		t.Errorf("RotationPeriod = %v, want %v", cfg.RotationPeriod, DefaultRotationPeriod)
	}
	if cfg.Capacity != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", cfg.Capacity, DefaultCapacity)
	}
	if _, ok := cfg.Logger.(NoOpLogger); !ok {
		t.Errorf("Logger should be NoOpLogger, got %T", cfg.Logger)
	}
}

func TestSystemTimeProvider(t *testing.T) {
	provider := &systemTimeProvider{}

	now1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	now2 := provider.Now()

	if now2 <= now1 {
		t.Errorf("Time should advance: now1=%v, now2=%v", now1, now2)
	}
	if now2-now1 < int64(10*time.Millisecond) {
		t.Errorf("clock advanced %v across a 10ms sleep", time.Duration(now2-now1))
	}
}

// The rotation clock counts from package start on the monotonic clock, so
// readings are small and never go backwards.
func TestSystemTimeProvider_Monotonic(t *testing.T) {
	provider := &systemTimeProvider{}

	first := provider.Now()
	if first < 0 || first > int64(time.Since(clockOrigin)) {
		t.Fatalf("Now = %d outside [0, %d]", first, int64(time.Since(clockOrigin)))
	}

	prev := first
	for i := 0; i < 10000; i++ {
		now := provider.Now()
		if now < prev {
			t.Fatalf("clock went backwards: %d after %d", now, prev)
		}
		prev = now
	}

	// Without a monotonic reading the clock would follow wall time steps
	if !strings.Contains(clockOrigin.String(), "m=") {
		t.Errorf("origin %v carries no monotonic reading", clockOrigin)
	}
}

func TestNoOpLogger(t *testing.T) {
	// Just test that NoOpLogger doesn't panic
	logger := NoOpLogger{}

	logger.Debug("test", "key", "value")
	logger.Info("test", "key", "value")
	logger.Warn("test", "key", "value")
	logger.Error("test", "key", "value")
}

func TestCacheStats_HitRatio(t *testing.T) {
	tests := []struct {
		stats CacheStats
		want  float64
	}{
		{CacheStats{}, 0},
		{CacheStats{Hits: 3, Misses: 1}, 75},
		{CacheStats{Hits: 0, Misses: 4}, 0},
		{CacheStats{Hits: 5}, 100},
	}
	for _, tt := range tests {
		if got := tt.stats.HitRatio(); got != tt.want {
			t.Errorf("HitRatio(%+v) = %v, want %v", tt.stats, got, tt.want)
		}
	}
}
