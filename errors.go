// errors.go: structured error handling for mnemo operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for cache fills, pool configuration and hot reload.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package mnemo

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for mnemo operations
const (
	// Configuration errors
	ErrCodeInvalidConfig         errors.ErrorCode = "MNEMO_INVALID_CONFIG"
	ErrCodeInvalidCapacity       errors.ErrorCode = "MNEMO_INVALID_CAPACITY"
	ErrCodeInvalidRotationPeriod errors.ErrorCode = "MNEMO_INVALID_ROTATION_PERIOD"

	// Operation errors
	ErrCodeInvalidFill errors.ErrorCode = "MNEMO_INVALID_FILL"
	ErrCodeNilKey      errors.ErrorCode = "MNEMO_NIL_KEY"
	ErrCodeCacheClosed errors.ErrorCode = "MNEMO_CACHE_CLOSED"

	// Fill errors
	ErrCodeFillFailed     errors.ErrorCode = "MNEMO_FILL_FAILED"
	ErrCodeFillCancelled  errors.ErrorCode = "MNEMO_FILL_CANCELLED"
	ErrCodePanicRecovered errors.ErrorCode = "MNEMO_PANIC_RECOVERED"

	// Internal errors
	ErrCodeHotReloadFailed errors.ErrorCode = "MNEMO_HOT_RELOAD_FAILED"
)

// Common error messages
const (
	msgInvalidConfig         = "invalid configuration"
	msgInvalidCapacity       = "invalid capacity: must be greater than 0"
	msgInvalidRotationPeriod = "invalid rotation period: must be greater than 0"
	msgInvalidFill           = "fill function cannot be nil"
	msgNilKey                = "key cannot be nil"
	msgCacheClosed           = "cache is closed"
	msgFillFailed            = "fill function failed"
	msgFillCancelled         = "fill was cancelled"
	msgPanicRecovered        = "panic recovered in fill function"
	msgHotReloadFailed       = "failed to apply reloaded configuration"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidConfig creates an error for a configuration that cannot be used
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrInvalidCapacity creates an error for invalid capacity
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrInvalidRotationPeriod creates an error for invalid rotation period
func NewErrInvalidRotationPeriod(period interface{}) error {
	return errors.NewWithField(ErrCodeInvalidRotationPeriod, msgInvalidRotationPeriod, "provided_period", fmt.Sprintf("%v", period))
}

// =============================================================================
// OPERATION ERRORS
// =============================================================================

// NewErrInvalidFill creates an error when the fill function is nil
func NewErrInvalidFill(key interface{}) error {
	return errors.NewWithField(ErrCodeInvalidFill, msgInvalidFill, "key", fmt.Sprintf("%v", key))
}

// NewErrNilKey creates an error when a weak cache receives a nil key
func NewErrNilKey(operation string) error {
	return errors.NewWithField(ErrCodeNilKey, msgNilKey, "operation", operation)
}

// NewErrCacheClosed creates an error when a closed cache is used
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// =============================================================================
// FILL ERRORS
// =============================================================================

// NewErrFillFailed creates an error when a fill function fails.
// The cause stays reachable through errors.Is / errors.As.
func NewErrFillFailed(key interface{}, cause error) error {
	return errors.Wrap(cause, ErrCodeFillFailed, msgFillFailed).
		WithContext("key", fmt.Sprintf("%v", key)).
		AsRetryable()
}

// NewErrFillCancelled creates an error when a caller stops waiting for a
// fill because its context ended. The context error is wrapped.
func NewErrFillCancelled(key interface{}, cause error) error {
	return errors.Wrap(cause, ErrCodeFillCancelled, msgFillCancelled).
		WithContext("key", fmt.Sprintf("%v", key)).
		AsRetryable()
}

// NewErrPanicRecovered creates an error when a panic is recovered
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrHotReloadFailed creates an error when a reloaded config cannot be applied
func NewErrHotReloadFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeHotReloadFailed, msgHotReloadFailed).
		WithContext("config_path", path).
		WithSeverity("warning")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// fillError classifies an error returned by a fill function.
// Context errors of the calling context become cancellations, everything
// else is wrapped as a fill failure. Errors already carrying a mnemo fill
// code (from a nested cache call) pass through unchanged.
func fillError(ctx context.Context, key interface{}, err error) error {
	if errors.HasCode(err, ErrCodeFillFailed) || errors.HasCode(err, ErrCodeFillCancelled) ||
		errors.HasCode(err, ErrCodePanicRecovered) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && goerrors.Is(err, ctxErr) {
		return NewErrFillCancelled(key, err)
	}
	return NewErrFillFailed(key, err)
}

// IsFillError checks if error is a fill failure (including recovered panics)
func IsFillError(err error) bool {
	return errors.HasCode(err, ErrCodeFillFailed) || errors.HasCode(err, ErrCodePanicRecovered)
}

// IsCancelled checks if error is a fill cancellation
func IsCancelled(err error) bool {
	return errors.HasCode(err, ErrCodeFillCancelled)
}

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidConfig || code == ErrCodeInvalidCapacity ||
			code == ErrCodeInvalidRotationPeriod
	}
	return false
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var mnemoErr *errors.Error
	if goerrors.As(err, &mnemoErr) {
		return mnemoErr.Context
	}
	return nil
}
