// helpers_test.go: shared test doubles
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"sync"
	"sync/atomic"
	"time"
)

// mockTimeProvider is a manually advanced clock.
type mockTimeProvider struct {
	now int64
}

func newMockTime() *mockTimeProvider {
	return &mockTimeProvider{now: time.Unix(1_700_000_000, 0).UnixNano()}
}

func (m *mockTimeProvider) Now() int64 {
	return atomic.LoadInt64(&m.now)
}

func (m *mockTimeProvider) Advance(d time.Duration) {
	atomic.AddInt64(&m.now, int64(d))
}

// recordingLogger keeps every message it receives.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, keyvals ...interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, keyvals ...interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, keyvals ...interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, keyvals ...interface{}) { l.record(msg) }

func (l *recordingLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if m == msg {
			n++
		}
	}
	return n
}

// countingMetrics counts every callback.
type countingMetrics struct {
	gets, hits, fills, failedFills, rotations, evictions int64
}

func (m *countingMetrics) RecordGet(latencyNs int64, hit bool) {
	atomic.AddInt64(&m.gets, 1)
	if hit {
		atomic.AddInt64(&m.hits, 1)
	}
}

func (m *countingMetrics) RecordFill(latencyNs int64, failed bool) {
	if failed {
		atomic.AddInt64(&m.failedFills, 1)
		return
	}
	atomic.AddInt64(&m.fills, 1)
}

func (m *countingMetrics) RecordRotation(evicted int) {
	atomic.AddInt64(&m.rotations, 1)
	atomic.AddInt64(&m.evictions, int64(evicted))
}

func (m *countingMetrics) RecordEviction(n int) {
	atomic.AddInt64(&m.evictions, int64(n))
}
