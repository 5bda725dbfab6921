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

package unify

import (
	"go.uber.org/zap"

	"github.com/unifyrt/unify/internal/logger"
)

// Log verbosity levels accepted by SetLogLevel.
const (
	LevelTrace   = logger.LevelTrace
	LevelDebug   = logger.LevelDebug
	LevelInfo    = logger.LevelInfo
	LevelWarn    = logger.LevelWarn
	LevelError   = logger.LevelError
	LevelNoPrint = logger.LevelNoPrint
)

// SetLogLevel changes how much the module logs internally. The default is
// LevelWarn; the process env UNIFY_LOG_LEVEL can also set it.
func SetLogLevel(l int) {
	logger.SetLogLevel(l)
}

// SetLogger replaces the module's logging sink, for applications that
// want runtime internals in their own zap tree. Passing nil silences the
// module entirely.
func SetLogger(l *zap.SugaredLogger) {
	logger.SetLogger(l)
}
