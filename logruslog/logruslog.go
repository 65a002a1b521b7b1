// logruslog.go: logrus adapter for mnemo.Logger
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package logruslog adapts a *logrus.Entry to the mnemo.Logger interface.
package logruslog

import (
	"fmt"

	"github.com/agilira/mnemo"
	"github.com/sirupsen/logrus"
)

// Logger forwards mnemo log calls to logrus.
type Logger struct{ E *logrus.Entry }

// New wraps l. A nil l uses logrus.StandardLogger().
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: logrus.NewEntry(l)}
}

func (l Logger) Debug(msg string, keyvals ...interface{}) { l.E.WithFields(fields(keyvals)).Debug(msg) }
func (l Logger) Info(msg string, keyvals ...interface{})  { l.E.WithFields(fields(keyvals)).Info(msg) }
func (l Logger) Warn(msg string, keyvals ...interface{})  { l.E.WithFields(fields(keyvals)).Warn(msg) }
func (l Logger) Error(msg string, keyvals ...interface{}) { l.E.WithFields(fields(keyvals)).Error(msg) }

func fields(keyvals []interface{}) logrus.Fields {
	f := make(logrus.Fields, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 == len(keyvals) {
			f["extra"] = keyvals[i]
			break
		}
		f[fmt.Sprint(keyvals[i])] = keyvals[i+1]
	}
	return f
}

var _ mnemo.Logger = Logger{}
