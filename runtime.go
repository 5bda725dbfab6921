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
	"github.com/unifyrt/unify/adapter/goroutine"
)

// NewRuntime returns the default production runtime, backed by plain
// goroutines with a CPU-sized blocking pool. Programs that need different
// tuning construct the adapter directly.
func NewRuntime() (*goroutine.Runtime, error) {
	return goroutine.New(nil)
}
