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

// Executor submits units of work to a backend scheduler. It is the untyped
// submission contract; the typed handle layer on top of it lives in
// pkg/task.
//
// Implementations decide where and how run executes. The contract only
// fixes the observable behavior: submission never blocks the caller, and
// once Exec or ExecBlocking returns nil the work will run even if nobody
// observes its outcome.
type Executor interface {
	// Exec submits run for concurrent execution and returns immediately.
	// run may execute on any worker; it must not rely on staying on one
	// OS thread.
	Exec(run func()) error

	// ExecBlocking offloads run, which is expected to block (synchronous
	// I/O, CPU-heavy loops), onto an execution context separate from the
	// cooperative workers so it cannot starve them.
	//
	// Implementations must bound the number of concurrently running
	// offloads with a fixed-size pool and queue excess submissions in
	// FIFO order instead of growing OS threads without limit.
	ExecBlocking(run func()) error
}
