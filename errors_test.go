// errors_test.go: tests for error handling in mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/agilira/go-errors"
)

// Test error code creation and basic properties
func TestErrorCodes(t *testing.T) {
	cause := goerrors.New("boom")

	tests := []struct {
		name         string
		errFunc      func() error
		expectedCode errors.ErrorCode
		shouldRetry  bool
		isConfig     bool
	}{
		{
			name:         "InvalidConfig",
			errFunc:      func() error { return NewErrInvalidConfig("config_path", "") },
			expectedCode: ErrCodeInvalidConfig,
			isConfig:     true,
		},
		{
			name:         "InvalidCapacity",
			errFunc:      func() error { return NewErrInvalidCapacity(0) },
			expectedCode: ErrCodeInvalidCapacity,
			isConfig:     true,
		},
		{
			name:         "InvalidRotationPeriod",
			errFunc:      func() error { return NewErrInvalidRotationPeriod(-time.Second) },
			expectedCode: ErrCodeInvalidRotationPeriod,
			isConfig:     true,
		},
		{
			name:         "InvalidFill",
			errFunc:      func() error { return NewErrInvalidFill("k") },
			expectedCode: ErrCodeInvalidFill,
		},
		{
			name:         "NilKey",
			errFunc:      func() error { return NewErrNilKey("GetOrAdd") },
			expectedCode: ErrCodeNilKey,
		},
		{
			name:         "CacheClosed",
			errFunc:      func() error { return NewErrCacheClosed("Get") },
			expectedCode: ErrCodeCacheClosed,
		},
		{
			name:         "FillFailed",
			errFunc:      func() error { return NewErrFillFailed("k", cause) },
			expectedCode: ErrCodeFillFailed,
			shouldRetry:  true,
		},
		{
			name:         "FillCancelled",
			errFunc:      func() error { return NewErrFillCancelled("k", context.Canceled) },
			expectedCode: ErrCodeFillCancelled,
			shouldRetry:  true,
		},
		{
			name:         "PanicRecovered",
			errFunc:      func() error { return NewErrPanicRecovered("fill:k", "panic message") },
			expectedCode: ErrCodePanicRecovered,
		},
		{
			name:         "HotReloadFailed",
			errFunc:      func() error { return NewErrHotReloadFailed("/etc/mnemo.yaml", cause) },
			expectedCode: ErrCodeHotReloadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.errFunc()
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.HasCode(err, tt.expectedCode) {
				t.Errorf("expected code %s, got %s", tt.expectedCode, GetErrorCode(err))
			}

			if IsRetryable(err) != tt.shouldRetry {
				t.Errorf("expected retryable=%v, got %v", tt.shouldRetry, IsRetryable(err))
			}

			if IsConfigError(err) != tt.isConfig {
				t.Errorf("expected config error=%v, got %v", tt.isConfig, IsConfigError(err))
			}

			if err.Error() == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}

func TestFillError_Classification(t *testing.T) {
	cause := goerrors.New("database unavailable")

	t.Run("plain error becomes fill failure", func(t *testing.T) {
		err := fillError(context.Background(), "k", cause)
		if !IsFillError(err) {
			t.Errorf("expected fill error, got %v", GetErrorCode(err))
		}
		if !goerrors.Is(err, cause) {
			t.Error("cause should be reachable with errors.Is")
		}
	})

	t.Run("context error of cancelled caller becomes cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := fillError(ctx, "k", ctx.Err())
		if !IsCancelled(err) {
			t.Errorf("expected cancellation, got %v", GetErrorCode(err))
		}
		if !goerrors.Is(err, context.Canceled) {
			t.Error("context.Canceled should be reachable with errors.Is")
		}
	})

	t.Run("context error with live caller is a failure", func(t *testing.T) {
		err := fillError(context.Background(), "k", context.DeadlineExceeded)
		if !IsFillError(err) {
			t.Errorf("expected fill error, got %v", GetErrorCode(err))
		}
	})

	t.Run("nested mnemo errors pass through", func(t *testing.T) {
		inner := NewErrFillFailed("inner", cause)
		err := fillError(context.Background(), "outer", inner)
		if err != inner {
			t.Error("expected nested fill error to be returned unchanged")
		}
	})
}

func TestGetErrorContext(t *testing.T) {
	err := NewErrFillFailed(42, goerrors.New("x"))
	ctx := GetErrorContext(err)
	if ctx == nil {
		t.Fatal("expected context")
	}
	if ctx["key"] != "42" {
		t.Errorf("expected key=42 in context, got %v", ctx["key"])
	}

	if GetErrorContext(nil) != nil {
		t.Error("nil error should have nil context")
	}
	if GetErrorContext(goerrors.New("plain")) != nil {
		t.Error("plain error should have nil context")
	}
	if GetErrorCode(goerrors.New("plain")) != "" {
		t.Error("plain error should have empty code")
	}
}

func TestPanicRecovered_Severity(t *testing.T) {
	err := NewErrPanicRecovered("fill:k", "oops")
	var mnemoErr *errors.Error
	if !goerrors.As(err, &mnemoErr) {
		t.Fatal("expected *errors.Error")
	}
	if mnemoErr.Severity != "critical" {
		t.Errorf("expected critical severity, got %q", mnemoErr.Severity)
	}
}
