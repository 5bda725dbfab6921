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

// Package api defines the capability contracts and error taxonomy of unify.
package api

import (
	"errors"
	"fmt"
)

// The error taxonomy shared by every capability. All fallible operations
// return one of these sentinels, possibly wrapped with cause detail, and
// callers match them with errors.Is. None of them is ever escalated to a
// process-fatal condition.
var (
	// ErrMalformedEndpoint reports invalid endpoint syntax. Always local,
	// never retried automatically.
	ErrMalformedEndpoint = errors.New("malformed endpoint")

	// ErrAddressInUse reports that a bind target is already taken.
	ErrAddressInUse = errors.New("address in use")

	// ErrPermissionDenied reports that the OS refused a socket operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConnectionRefused reports that the peer actively refused a connect.
	ErrConnectionRefused = errors.New("connection refused")

	// ErrConnectionReset reports that an established stream was torn down
	// by the peer.
	ErrConnectionReset = errors.New("connection reset")

	// ErrTimedOut reports that a transport operation ran out of time. It is
	// distinct from ErrExpired, which belongs to the timeout race.
	ErrTimedOut = errors.New("timed out")

	// ErrResolutionFailed reports that a name lookup errored or produced no
	// addresses.
	ErrResolutionFailed = errors.New("resolution failed")

	// ErrExpired reports that a timeout deadline fired before the raced
	// work completed.
	ErrExpired = errors.New("deadline expired")

	// ErrCancelled reports that a task reached its terminal state through
	// cooperative cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrFailed reports that spawned work itself failed. The cause is
	// attached by wrapping.
	ErrFailed = errors.New("task failed")
)

// PanicError carries a recovered panic out of a spawned task body. It is
// surfaced through Handle.Await wrapped in ErrFailed rather than crashing
// the host process.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
