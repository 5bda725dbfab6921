/*
 * Copyright 2026 unify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger is the internal leveled logging facade. The core logs
// sparsely through it; embedding applications can swap the sink or raise
// the level without pulling a logging dependency of their own into the
// contract surface.
package logger

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

var (
	level = LevelWarn
	sugar *zap.SugaredLogger
)

func init() {
	if v := os.Getenv("UNIFY_LOG_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n <= LevelNoPrint {
			level = n
		}
	}
	cfg := zap.NewProductionConfig()
	// Gating happens here by numeric level; zap itself passes everything.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.DisableStacktrace = true
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}
	sugar = zl.Sugar()
}

// SetLogLevel changes the level gate. The default is LevelWarn; the process
// env UNIFY_LOG_LEVEL can also set it.
func SetLogLevel(l int) {
	if l >= LevelTrace && l <= LevelNoPrint {
		level = l
	}
}

// SetLogger replaces the sink. Passing nil restores a no-op sink.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		sugar = zap.NewNop().Sugar()
		return
	}
	sugar = l
}

func Tracef(format string, a ...interface{}) {
	if level > LevelTrace {
		return
	}
	sugar.Debugf(format, a...)
}

func Debugf(format string, a ...interface{}) {
	if level > LevelDebug {
		return
	}
	sugar.Debugf(format, a...)
}

func Infof(format string, a ...interface{}) {
	if level > LevelInfo {
		return
	}
	sugar.Infof(format, a...)
}

func Warnf(format string, a ...interface{}) {
	if level > LevelWarn {
		return
	}
	sugar.Warnf(format, a...)
}

func Errorf(format string, a ...interface{}) {
	if level > LevelError {
		return
	}
	sugar.Errorf(format, a...)
}
