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

// Package conformance checks an api.Runtime implementation against the
// behavioral contract every adapter must honor. The shipped adapters run
// it from their own tests; authors of custom runtimes should do the same:
//
//	func TestMyRuntime(t *testing.T) {
//		conformance.TestRuntime(t, func() (api.Runtime, func(), error) {
//			rt, err := myruntime.New(nil)
//			if err != nil {
//				return nil, nil, err
//			}
//			return rt, func() { rt.Close() }, nil
//		})
//	}
package conformance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/pkg/task"
)

// MakeRuntime builds a fresh runtime under test and a stop function that
// releases it.
type MakeRuntime func() (rt api.Runtime, stop func(), err error)

// TestRuntime runs the full contract suite against runtimes built by mk.
// Each subtest gets its own runtime instance.
func TestRuntime(t *testing.T, mk MakeRuntime) {
	t.Helper()

	run := func(name string, fn func(t *testing.T, rt api.Runtime)) {
		t.Run(name, func(t *testing.T) {
			rt, stop, err := mk()
			require.Nil(t, err)
			require.NotNil(t, rt)
			if stop != nil {
				defer stop()
			}
			fn(t, rt)
		})
	}

	run("ExecRunsTask", testExecRunsTask)
	run("ExecRejectsNilTask", testExecRejectsNilTask)
	run("ExecBlockingRunsTask", testExecBlockingRunsTask)
	run("ExecBlockingReturnsBeforeTaskEnds", testExecBlockingReturnsBeforeTaskEnds)
	run("SpawnAndAwait", testSpawnAndAwait)
	run("AwaitCachesOutcome", testAwaitCachesOutcome)
	run("CancelIsCooperative", testCancelIsCooperative)
	run("ReleasedWorkRunsToCompletion", testReleasedWorkRunsToCompletion)
	run("TimeoutDeliversEarlyResult", testTimeoutDeliversEarlyResult)
	run("TimeoutExpiresAtDeadline", testTimeoutExpiresAtDeadline)
	run("SleepWakesOnSchedule", testSleepWakesOnSchedule)
	run("SleepObservesCancellation", testSleepObservesCancellation)
	run("AfterDeliversOnce", testAfterDeliversOnce)
	run("TickerFirstTickAfterFullPeriod", testTickerFirstTickAfterFullPeriod)
	run("ResolveLoopback", testResolveLoopback)
	run("ResolveRejectsEmptyHost", testResolveRejectsEmptyHost)
	run("ListenAndDialRoundTrip", testListenAndDialRoundTrip)
}

func testExecRunsTask(t *testing.T, rt api.Runtime) {
	done := make(chan struct{})
	require.Nil(t, rt.Exec(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task never ran")
	}
}

func testExecRejectsNilTask(t *testing.T, rt api.Runtime) {
	require.NotNil(t, rt.Exec(nil))
	require.NotNil(t, rt.ExecBlocking(nil))
}

func testExecBlockingRunsTask(t *testing.T, rt api.Runtime) {
	done := make(chan struct{})
	require.Nil(t, rt.ExecBlocking(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("blocking task never ran")
	}
}

func testExecBlockingReturnsBeforeTaskEnds(t *testing.T, rt api.Runtime) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	require.Nil(t, rt.ExecBlocking(func() { <-release }))
	require.Less(t, time.Since(start), time.Second, "submitting must not wait for the task")
}

func testSpawnAndAwait(t *testing.T, rt api.Runtime) {
	h := task.Spawn(context.Background(), rt, func(ctx context.Context) (int, error) {
		return 6 * 7, nil
	})
	v, err := h.Await(context.Background())
	require.Nil(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, task.Completed, h.State())
}

func testAwaitCachesOutcome(t *testing.T, rt api.Runtime) {
	h := task.Spawn(context.Background(), rt, func(ctx context.Context) (string, error) {
		return "stable", nil
	})
	first, err1 := h.Await(context.Background())
	second, err2 := h.Await(context.Background())
	require.Nil(t, err1)
	require.Nil(t, err2)
	require.Equal(t, first, second)
}

func testCancelIsCooperative(t *testing.T, rt api.Runtime) {
	started := make(chan struct{})
	h := task.Spawn(context.Background(), rt, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started
	h.Cancel()

	_, err := h.Await(context.Background())
	require.True(t, errors.Is(err, api.ErrCancelled))
	require.Equal(t, task.Cancelled, h.State())
}

func testReleasedWorkRunsToCompletion(t *testing.T, rt api.Runtime) {
	gate := make(chan struct{})
	effect := make(chan int, 1)
	h := task.Spawn(context.Background(), rt, func(ctx context.Context) (int, error) {
		<-gate
		effect <- 99
		return 99, nil
	})

	h.Release()
	require.Equal(t, task.Detached, h.State())

	// The work must keep running without its observer.
	close(gate)
	select {
	case v := <-effect:
		require.Equal(t, 99, v)
	case <-time.After(5 * time.Second):
		t.Fatal("detached work never completed")
	}

	<-h.Done()
	require.Equal(t, task.Detached, h.State())
	_, err := h.Await(context.Background())
	require.NotNil(t, err)
}

func testTimeoutDeliversEarlyResult(t *testing.T, rt api.Runtime) {
	start := time.Now()
	v, err := task.Timeout(context.Background(), rt, 2*time.Second, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.Nil(t, err)
	require.Equal(t, 7, v)
	require.Less(t, time.Since(start), 2*time.Second)
}

func testTimeoutExpiresAtDeadline(t *testing.T, rt api.Runtime) {
	const d = 120 * time.Millisecond
	sawCancel := make(chan struct{})

	start := time.Now()
	_, err := task.Timeout(context.Background(), rt, d, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(sawCancel)
		return 0, ctx.Err()
	})
	elapsed := time.Since(start)

	require.True(t, errors.Is(err, api.ErrExpired))
	require.GreaterOrEqual(t, elapsed, d)
	require.Less(t, elapsed, d+2*time.Second)

	// Losing work is cancelled, not abandoned.
	select {
	case <-sawCancel:
	case <-time.After(5 * time.Second):
		t.Fatal("expired work never observed cancellation")
	}
}

func testSleepWakesOnSchedule(t *testing.T, rt api.Runtime) {
	const d = 80 * time.Millisecond
	start := time.Now()
	require.Nil(t, rt.Sleep(context.Background(), d))
	require.GreaterOrEqual(t, time.Since(start), d)
}

func testSleepObservesCancellation(t *testing.T, rt api.Runtime) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := rt.Sleep(ctx, 10*time.Second)
	require.NotNil(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.Less(t, time.Since(start), 5*time.Second)
}

func testAfterDeliversOnce(t *testing.T, rt api.Runtime) {
	const d = 50 * time.Millisecond
	start := time.Now()
	tick, stop := rt.After(d)
	defer stop()

	select {
	case <-tick:
		require.GreaterOrEqual(t, time.Since(start), d-time.Millisecond)
	case <-time.After(5 * time.Second):
		t.Fatal("one-shot clock never fired")
	}

	// Stopping an already fired clock must be safe, repeatedly.
	stop()
	stop()
}

func testTickerFirstTickAfterFullPeriod(t *testing.T, rt api.Runtime) {
	const d = 100 * time.Millisecond
	start := time.Now()
	tk := rt.NewTicker(d)
	defer tk.Stop()

	select {
	case <-tk.C():
		elapsed := time.Since(start)
		require.GreaterOrEqual(t, elapsed, d-time.Millisecond, "first tick must wait one full period")
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never ticked")
	}

	select {
	case <-tk.C():
		require.GreaterOrEqual(t, time.Since(start), 2*d-2*time.Millisecond)
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never ticked twice")
	}
}

func testResolveLoopback(t *testing.T, rt api.Runtime) {
	set, err := rt.Resolve(context.Background(), "localhost", 8080)
	require.Nil(t, err)
	require.NotEmpty(t, set)
	for _, ap := range set {
		require.True(t, ap.Addr().IsLoopback(), "localhost resolved to %s", ap)
		require.Equal(t, uint16(8080), ap.Port())
	}
}

func testResolveRejectsEmptyHost(t *testing.T, rt api.Runtime) {
	_, err := rt.Resolve(context.Background(), "", 80)
	require.True(t, errors.Is(err, api.ErrResolutionFailed))
}

func testListenAndDialRoundTrip(t *testing.T, rt api.Runtime) {
	ctx := context.Background()

	ln, err := rt.Listen(ctx, "tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, aerr := ln.Accept()
		if aerr == nil {
			_ = conn.Close()
		}
		accepted <- aerr
	}()

	conn, err := rt.Dial(ctx, "tcp", ln.Addr().String())
	require.Nil(t, err)
	require.Nil(t, conn.Close())
	require.Nil(t, <-accepted)
}
