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
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/logger"
)

// State is the lifecycle position of a spawned unit of work as observed
// through its Handle. Transitions are linear and monotonic: Running moves
// to exactly one of Completed, Failed, or Cancelled, or to Detached when
// the handle is released first.
type State uint32

const (
	Running State = iota
	Completed
	Failed
	Cancelled
	Detached
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

var errReleased = errors.New("task: handle released")

// Handle owns the observation side of one spawned unit of work: the right
// to await its result or request its cancellation. It does not own the
// execution itself, which belongs to the backend scheduler.
//
// The result channel has a single producer, the task body, and a single
// consumer, the handle holder. A Handle that goes out of scope without
// Cancel leaves the work running; call Release to make that explicit.
type Handle[T any] struct {
	id     string
	ctx    context.Context
	cancel context.CancelCauseFunc
	state  atomic.Uint32
	done   chan struct{}
	result T
	err    error
}

func newHandle[T any](parent context.Context, blocking bool) *Handle[T] {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handle[T]{
		id:     ulid.Make().String(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	kind := "async"
	if blocking {
		kind = "blocking"
	}
	tasksSpawned.WithLabelValues(kind).Inc()
	register(h.id, blocking, &h.state)
	return h
}

// ID returns the task's unique identifier.
func (h *Handle[T]) ID() string { return h.id }

// State returns the current lifecycle position.
func (h *Handle[T]) State() State { return State(h.state.Load()) }

// Done returns a channel closed once the work reaches a terminal state,
// whether or not the handle still observes it. It composes with select.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Await suspends the caller until the work reaches a terminal state and
// returns its outcome. The terminal outcome is cached: calls after
// completion return the same values. A completed result takes priority
// over a cancelled ctx when both are ready.
//
// Awaiting a released handle fails immediately; ctx abandonment only stops
// this wait, never the work.
func (h *Handle[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.take()
	default:
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-h.done:
		return h.take()
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

func (h *Handle[T]) take() (T, error) {
	if h.State() == Detached {
		var zero T
		return zero, errReleased
	}
	return h.result, h.err
}

// Cancel requests cooperative cancellation. The work observes it at its
// next suspension point; it is never preempted. If the work returns a
// result before observing the request, that terminal state wins and Cancel
// has no effect.
func (h *Handle[T]) Cancel() {
	h.cancel(api.ErrCancelled)
}

// Release detaches the handle from still-running work: the work keeps
// running to completion in the background and its eventual result, success
// or failure, is discarded. Releasing a handle whose work already finished
// does nothing. After Release the handle must not be awaited.
func (h *Handle[T]) Release() {
	if h.state.CompareAndSwap(uint32(Running), uint32(Detached)) {
		tasksDetached.Inc()
		logger.Debugf("task %s: handle released, work detached", h.id)
	}
}

// finish records the work's outcome. It is called exactly once per task by
// the body wrapper.
func (h *Handle[T]) finish(v T, err error) {
	target, terr := terminalFor(err)
	if h.state.CompareAndSwap(uint32(Running), uint32(target)) {
		h.result = v
		h.err = terr
		close(h.done)
		unregister(h.id)
		tasksFinished.WithLabelValues(target.String()).Inc()
		return
	}
	// Released before finishing: the work ran to completion in the backend
	// but the outcome has no observer left. Discarding a failure here is
	// the one sanctioned swallow in the error contract.
	if h.State() == Detached {
		if terr != nil {
			logger.Warnf("task %s: detached task finished %s: %v", h.id, target, terr)
		}
		close(h.done)
		unregister(h.id)
		tasksFinished.WithLabelValues(target.String()).Inc()
	}
}

// terminalFor maps a work outcome to its terminal state and the error
// surfaced through Await. Cooperative cancellation, observed as a context
// cancellation flowing out of the body, is normalized to ErrCancelled;
// any other failure is wrapped in ErrFailed with the cause attached.
func terminalFor(err error) (State, error) {
	switch {
	case err == nil:
		return Completed, nil
	case errors.Is(err, api.ErrCancelled), errors.Is(err, context.Canceled):
		return Cancelled, api.ErrCancelled
	default:
		return Failed, fmt.Errorf("%w: %w", api.ErrFailed, err)
	}
}
