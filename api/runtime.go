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

package api

// Runtime is the capability aggregate a backend adapter provides. Any value
// that implements Executor, Timer, NetProvider, and Resolver simultaneously
// satisfies it, letting generic code be written once against the aggregate
// and run unmodified on structurally different schedulers.
//
// The core neither discovers nor loads adapters. An application picks one
// at its composition root and threads it through explicitly.
type Runtime interface {
	Executor
	Timer
	NetProvider
	Resolver
}
