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
	"fmt"
	"runtime/debug"

	"github.com/unifyrt/unify/api"
)

// Spawn submits work to ex for concurrent execution and returns its handle
// immediately, never blocking the caller. The work receives a context that
// is cancelled by Handle.Cancel or by cancellation of ctx; it should return
// promptly once that context is done.
//
// Submission always enqueues: the work runs even if the handle is released
// right away. A panic inside work is recovered into a Failed outcome and
// never terminates the process. If the executor refuses the submission,
// the handle is Failed with the refusal as cause.
func Spawn[T any](ctx context.Context, ex api.Executor, work func(context.Context) (T, error)) *Handle[T] {
	h := newHandle[T](ctx, false)
	if err := ex.Exec(h.body(work)); err != nil {
		var zero T
		h.finish(zero, fmt.Errorf("submit: %w", err))
	}
	return h
}

// SpawnBlocking offloads work expected to block the calling thread onto the
// executor's bounded blocking pool and returns its handle immediately.
// Queueing is FIFO; if the handle is cancelled while the work is still
// waiting in the queue, the work is skipped and the handle becomes
// Cancelled.
//
// The work body takes no context: a blocking computation has no suspension
// points at which it could observe one.
func SpawnBlocking[T any](ctx context.Context, ex api.Executor, work func() (T, error)) *Handle[T] {
	h := newHandle[T](ctx, true)
	body := h.body(func(ctx context.Context) (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return work()
	})
	if err := ex.ExecBlocking(body); err != nil {
		var zero T
		h.finish(zero, fmt.Errorf("submit: %w", err))
	}
	return h
}

// body wraps work into the runnable the executor receives: it pins the
// handle's context, converts panics into Failed outcomes, and records the
// terminal state exactly once.
func (h *Handle[T]) body(work func(context.Context) (T, error)) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				h.finish(zero, &api.PanicError{Value: r, Stack: debug.Stack()})
			}
		}()
		v, err := work(h.ctx)
		h.finish(v, err)
	}
}
