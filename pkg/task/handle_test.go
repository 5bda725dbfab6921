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
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/suite"

	"github.com/unifyrt/unify/api"
)

// goExec is a minimal conforming executor: every submission runs on its
// own goroutine.
type goExec struct{}

func (goExec) Exec(run func()) error         { go run(); return nil }
func (goExec) ExecBlocking(run func()) error { go run(); return nil }

// inlineExec runs submissions synchronously, so work is already terminal
// by the time Spawn returns. Used to pin down tie-break behavior.
type inlineExec struct{}

func (inlineExec) Exec(run func()) error         { run(); return nil }
func (inlineExec) ExecBlocking(run func()) error { run(); return nil }

// refuseExec rejects every submission.
type refuseExec struct{}

func (refuseExec) Exec(func()) error         { return errors.New("executor closed") }
func (refuseExec) ExecBlocking(func()) error { return errors.New("executor closed") }

// gateExec holds ExecBlocking bodies until the test releases them, to make
// queue-time cancellation deterministic.
type gateExec struct {
	goExec
	held chan func()
}

func (g *gateExec) ExecBlocking(run func()) error {
	g.held <- run
	return nil
}

// stubRuntime combines goExec with stdlib-clock timers into a full
// aggregate for the generic algorithms under test.
type stubRuntime struct {
	goExec
}

func (stubRuntime) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (stubRuntime) After(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

func (stubRuntime) NewTicker(d time.Duration) api.Ticker { return stubTicker{time.NewTicker(d)} }

type stubTicker struct{ t *time.Ticker }

func (s stubTicker) C() <-chan time.Time { return s.t.C }
func (s stubTicker) Stop()               { s.t.Stop() }

func (stubRuntime) Listen(context.Context, string, string) (net.Listener, error) {
	return nil, errors.New("not implemented")
}

func (stubRuntime) Dial(context.Context, string, string) (net.Conn, error) {
	return nil, errors.New("not implemented")
}

func (stubRuntime) Resolve(context.Context, string, uint16) (api.ResolvedSet, error) {
	return nil, api.ErrResolutionFailed
}

// inlineRuntime is stubRuntime with synchronous submission.
type inlineRuntime struct {
	stubRuntime
}

func (inlineRuntime) Exec(run func()) error         { run(); return nil }
func (inlineRuntime) ExecBlocking(run func()) error { run(); return nil }

func finishedCount(s *suite.Suite, state State) float64 {
	var m dto.Metric
	s.Require().NoError(tasksFinished.WithLabelValues(state.String()).Write(&m))
	return m.GetCounter().GetValue()
}

type HandleTestSuite struct {
	suite.Suite
}

func (s *HandleTestSuite) TestSpawnCompletes() {
	before := finishedCount(&s.Suite, Completed)

	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	v, err := h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(42, v)
	s.Require().Equal(Completed, h.State())
	s.Require().NotEmpty(h.ID())

	// Terminal result is cached.
	v, err = h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(42, v)

	s.Require().Equal(before+1, finishedCount(&s.Suite, Completed))
}

func (s *HandleTestSuite) TestSpawnFailure() {
	cause := errors.New("disk on fire")
	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		return 0, cause
	})
	_, err := h.Await(context.Background())
	s.Require().Error(err)
	s.Require().ErrorIs(err, api.ErrFailed)
	s.Require().ErrorIs(err, cause)
	s.Require().Equal(Failed, h.State())
}

func (s *HandleTestSuite) TestSpawnPanicRecovered() {
	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		panic("boom")
	})
	_, err := h.Await(context.Background())
	s.Require().ErrorIs(err, api.ErrFailed)

	var pe *api.PanicError
	s.Require().ErrorAs(err, &pe)
	s.Require().Equal("boom", pe.Value)
	s.Require().NotEmpty(pe.Stack)
	s.Require().Equal(Failed, h.State())
}

func (s *HandleTestSuite) TestCancel() {
	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	h.Cancel()
	_, err := h.Await(context.Background())
	s.Require().ErrorIs(err, api.ErrCancelled)
	s.Require().Equal(Cancelled, h.State())
}

func (s *HandleTestSuite) TestCancelAfterCompletionKeepsResult() {
	h := Spawn(context.Background(), inlineExec{}, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	s.Require().Equal(Completed, h.State())

	h.Cancel()
	v, err := h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal("done", v)
	s.Require().Equal(Completed, h.State())
}

func (s *HandleTestSuite) TestParentContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	h := Spawn(ctx, goExec{}, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	cancel()
	_, err := h.Await(context.Background())
	s.Require().ErrorIs(err, api.ErrCancelled)
	s.Require().Equal(Cancelled, h.State())
}

func (s *HandleTestSuite) TestReleaseDetachesWithoutKillingWork() {
	baseline := Live()
	release := make(chan struct{})
	var effect atomic.Bool

	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-release
		effect.Store(true)
		return 1, nil
	})
	h.Release()
	s.Require().Equal(Detached, h.State())

	// Detached work stays visible to the registry until it finishes.
	s.Require().Equal(baseline+1, Live())
	close(release)

	s.Require().NoError(backoff.Retry(func() error {
		if !effect.Load() {
			return errors.New("detached work has not completed yet")
		}
		if Live() != baseline {
			return errors.New("registry still tracks the detached task")
		}
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)))

	s.Require().Equal(Detached, h.State())
}

func (s *HandleTestSuite) TestDetachedFailureIsDiscarded() {
	before := finishedCount(&s.Suite, Failed)
	release := make(chan struct{})

	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-release
		return 0, errors.New("nobody hears this")
	})
	h.Release()
	close(release)

	<-h.Done()
	s.Require().Equal(Detached, h.State())
	s.Require().Equal(before+1, finishedCount(&s.Suite, Failed))
}

func (s *HandleTestSuite) TestAwaitAfterRelease() {
	release := make(chan struct{})
	defer close(release)

	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})
	h.Release()
	_, err := h.Await(context.Background())
	s.Require().Error(err)
	s.Require().Contains(err.Error(), "released")
}

func (s *HandleTestSuite) TestReleaseAfterCompletionIsNoop() {
	h := Spawn(context.Background(), inlineExec{}, func(ctx context.Context) (int, error) {
		return 5, nil
	})
	h.Release()
	s.Require().Equal(Completed, h.State())
	v, err := h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(5, v)
}

func (s *HandleTestSuite) TestRefusedSubmissionFailsHandle() {
	h := Spawn(context.Background(), refuseExec{}, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	_, err := h.Await(context.Background())
	s.Require().ErrorIs(err, api.ErrFailed)
	s.Require().Contains(err.Error(), "executor closed")
	s.Require().Equal(Failed, h.State())
}

func (s *HandleTestSuite) TestAwaitAbandonLeavesWorkAlone() {
	release := make(chan struct{})
	h := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-release
		return 9, nil
	})

	waitCtx, cancelWait := context.WithCancel(context.Background())
	cancelWait()
	_, err := h.Await(waitCtx)
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().Equal(Running, h.State())

	close(release)
	v, err := h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal(9, v)
}

func (s *HandleTestSuite) TestSpawnBlocking() {
	h := SpawnBlocking(context.Background(), goExec{}, func() (string, error) {
		return "offloaded", nil
	})
	v, err := h.Await(context.Background())
	s.Require().NoError(err)
	s.Require().Equal("offloaded", v)
}

func (s *HandleTestSuite) TestSpawnBlockingCancelledInQueue() {
	g := &gateExec{held: make(chan func(), 1)}
	ran := false

	h := SpawnBlocking(context.Background(), g, func() (int, error) {
		ran = true
		return 1, nil
	})
	h.Cancel()

	// Body reaches the worker only after cancellation.
	body := <-g.held
	body()

	_, err := h.Await(context.Background())
	s.Require().ErrorIs(err, api.ErrCancelled)
	s.Require().Equal(Cancelled, h.State())
	s.Require().False(ran, "queued work must be skipped once cancelled")
}

func (s *HandleTestSuite) TestSnapshot() {
	release := make(chan struct{})
	h1 := Spawn(context.Background(), goExec{}, func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	})
	h2 := SpawnBlocking(context.Background(), goExec{}, func() (int, error) {
		<-release
		return 0, nil
	})

	infos := Snapshot()
	byID := make(map[string]Info, len(infos))
	for _, in := range infos {
		byID[in.ID] = in
	}
	s.Require().Contains(byID, h1.ID())
	s.Require().Contains(byID, h2.ID())
	s.Require().False(byID[h1.ID()].Blocking)
	s.Require().True(byID[h2.ID()].Blocking)
	s.Require().Equal(Running, byID[h1.ID()].State)

	close(release)
	_, _ = h1.Await(context.Background())
	_, _ = h2.Await(context.Background())
}

func (s *HandleTestSuite) TestStateString() {
	s.Require().Equal("running", Running.String())
	s.Require().Equal("completed", Completed.String())
	s.Require().Equal("failed", Failed.String())
	s.Require().Equal("cancelled", Cancelled.String())
	s.Require().Equal("detached", Detached.String())
}

func TestHandleTestSuite(t *testing.T) {
	suite.Run(t, new(HandleTestSuite))
}
