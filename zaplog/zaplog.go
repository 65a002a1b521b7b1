// zaplog.go: zap adapter for mnemo.Logger
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package zaplog adapts a *zap.Logger to the mnemo.Logger interface.
//
//	logger, _ := zap.NewProduction()
//	cache := mnemo.NewPathCache[*Unit](mnemo.Config{Logger: zaplog.New(logger)})
package zaplog

import (
	"fmt"

	"github.com/agilira/mnemo"
	"go.uber.org/zap"
)

// Logger forwards mnemo log calls to zap, turning keyvals into fields.
type Logger struct{ L *zap.Logger }

// New wraps l. A nil l yields a no-op logger.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l}
}

func (z Logger) Debug(msg string, keyvals ...interface{}) { z.L.Debug(msg, fields(keyvals)...) }
func (z Logger) Info(msg string, keyvals ...interface{})  { z.L.Info(msg, fields(keyvals)...) }
func (z Logger) Warn(msg string, keyvals ...interface{})  { z.L.Warn(msg, fields(keyvals)...) }
func (z Logger) Error(msg string, keyvals ...interface{}) { z.L.Error(msg, fields(keyvals)...) }

// fields pairs keyvals up. Non-string keys are formatted; a dangling value
// is kept under "extra".
func fields(keyvals []interface{}) []zap.Field {
	if len(keyvals) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 == len(keyvals) {
			out = append(out, zap.Any("extra", keyvals[i]))
			break
		}
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		out = append(out, zap.Any(key, keyvals[i+1]))
	}
	return out
}

var _ mnemo.Logger = Logger{}
