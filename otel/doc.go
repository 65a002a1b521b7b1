// doc.go: package documentation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package otel provides OpenTelemetry integration for mnemo cache metrics.
//
// It implements the mnemo.MetricsCollector interface with OTEL histograms and
// counters, so any OTEL backend (Prometheus, Jaeger, DataDog) can chart
// lookup latency percentiles, hit ratio, fill failures and rotation churn.
//
// # Quick Start
//
//	import (
//	    "github.com/agilira/mnemo"
//	    mnemootel "github.com/agilira/mnemo/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := mnemootel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache := mnemo.NewTimedCache[string, Symbol, struct{}](mnemo.Config{
//	    RotationPeriod:   30 * time.Second,
//	    MetricsCollector: collector,
//	}, mnemo.Hooks[string, Symbol, struct{}]{})
//
// # Metrics Exposed
//
// Histograms:
//   - mnemo_get_latency_ns: lookup latency in nanoseconds
//   - mnemo_fill_latency_ns: fill function latency in nanoseconds
//
// Counters:
//   - mnemo_get_hits_total, mnemo_get_misses_total
//   - mnemo_fills_total, mnemo_fill_errors_total
//   - mnemo_rotations_total
//   - mnemo_evictions_total: entries retired by rotation, cleanup, validation or collected weak keys
//
// # Prometheus Queries
//
// Hit ratio:
//
//	rate(mnemo_get_hits_total[5m]) /
//	(rate(mnemo_get_hits_total[5m]) + rate(mnemo_get_misses_total[5m]))
//
// P99 fill latency:
//
//	histogram_quantile(0.99, rate(mnemo_fill_latency_ns_bucket[5m]))
package otel
