// collector.go: OpenTelemetry implementation of mnemo.MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"

	"github.com/agilira/go-errors"
	"github.com/agilira/mnemo"
	"go.opentelemetry.io/otel/metric"
)

// ErrCodeNilMeterProvider is returned when no MeterProvider is given.
const ErrCodeNilMeterProvider errors.ErrorCode = "MNEMO_OTEL_NIL_PROVIDER"

// OTelMetricsCollector implements mnemo.MetricsCollector using OpenTelemetry.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
// The underlying OTEL instruments are thread-safe and lock-free.
type OTelMetricsCollector struct {
	getLatency  metric.Int64Histogram // lookup latency
	fillLatency metric.Int64Histogram // fill function latency
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	fills       metric.Int64Counter
	fillErrors  metric.Int64Counter
	rotations   metric.Int64Counter
	evictions   metric.Int64Counter
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/mnemo"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
// This is useful for distinguishing metrics from multiple cache instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a new OpenTelemetry metrics collector.
//
// The collector creates the following OTEL instruments:
//   - Int64Histogram for lookup and fill latencies
//   - Int64Counter for hits, misses, fills, fill errors, rotations, evictions
//
// Example:
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, err := NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New(ErrCodeNilMeterProvider, "meter provider cannot be nil")
	}

	options := Options{
		MeterName: "github.com/agilira/mnemo",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	collector := &OTelMetricsCollector{}

	var err error
	collector.getLatency, err = meter.Int64Histogram(
		"mnemo_get_latency_ns",
		metric.WithDescription("Latency of cache lookups in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.fillLatency, err = meter.Int64Histogram(
		"mnemo_fill_latency_ns",
		metric.WithDescription("Latency of fill functions in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&collector.hits, "mnemo_get_hits_total", "Total number of cache hits"},
		{&collector.misses, "mnemo_get_misses_total", "Total number of cache misses"},
		{&collector.fills, "mnemo_fills_total", "Total number of successful fills"},
		{&collector.fillErrors, "mnemo_fill_errors_total", "Total number of failed, panicked or cancelled fills"},
		{&collector.rotations, "mnemo_rotations_total", "Total number of generation rotations"},
		{&collector.evictions, "mnemo_evictions_total", "Total number of evicted entries"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return nil, err
		}
	}

	return collector, nil
}

// RecordGet records a lookup latency and increments hits or misses.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordFill records a fill latency and increments fills or fill errors.
func (c *OTelMetricsCollector) RecordFill(latencyNs int64, failed bool) {
	ctx := context.Background()
	c.fillLatency.Record(ctx, latencyNs)
	if failed {
		c.fillErrors.Add(ctx, 1)
	} else {
		c.fills.Add(ctx, 1)
	}
}

// RecordRotation counts a rotation and the entries it retired.
func (c *OTelMetricsCollector) RecordRotation(evicted int) {
	ctx := context.Background()
	c.rotations.Add(ctx, 1)
	if evicted > 0 {
		c.evictions.Add(ctx, int64(evicted))
	}
}

// RecordEviction counts entries removed outside of rotation.
func (c *OTelMetricsCollector) RecordEviction(n int) {
	if n > 0 {
		c.evictions.Add(context.Background(), int64(n))
	}
}

// Compile-time interface check
var _ mnemo.MetricsCollector = (*OTelMetricsCollector)(nil)
