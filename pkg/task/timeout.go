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

package task

import (
	"context"
	"time"

	"github.com/unifyrt/unify/api"
)

// Timeout races work against a deadline of d using the runtime's Executor
// and Timer capabilities. If the work completes first its result is
// returned; if the deadline elapses first the work is cancelled
// cooperatively and ErrExpired is returned, with the abandoned work
// reaching Cancelled once it observes the signal.
//
// Completion wins ties: when the deadline and the result become ready
// together, the result is returned and the caller never sees a spurious
// expiry for work that already finished.
func Timeout[T any](ctx context.Context, rt api.Runtime, d time.Duration, work func(context.Context) (T, error)) (T, error) {
	h := Spawn(ctx, rt, work)
	expire, stop := rt.After(d)
	defer stop()

	select {
	case <-h.done:
		return h.take()
	case <-expire:
		select {
		case <-h.done:
			return h.take()
		default:
		}
		h.Cancel()
		timeoutsExpired.Inc()
		var zero T
		return zero, api.ErrExpired
	case <-ctx.Done():
		h.Cancel()
		var zero T
		return zero, context.Cause(ctx)
	}
}

// Race runs work until either it finishes or signal delivers, whichever
// comes first. On a signal win the work is cancelled cooperatively and
// ErrCancelled is returned; as in Timeout, a finished result takes
// priority over a simultaneous signal.
func Race[T any](ctx context.Context, ex api.Executor, work func(context.Context) (T, error), signal <-chan struct{}) (T, error) {
	h := Spawn(ctx, ex, work)

	select {
	case <-h.done:
		return h.take()
	case <-signal:
		select {
		case <-h.done:
			return h.take()
		default:
		}
		h.Cancel()
		var zero T
		return zero, api.ErrCancelled
	case <-ctx.Done():
		h.Cancel()
		var zero T
		return zero, context.Cause(ctx)
	}
}
