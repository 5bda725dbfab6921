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

// Package goroutine adapts the unify capability contracts to the native Go
// scheduler. Exec starts a fresh goroutine per task, ExecBlocking routes
// through a bounded offload pool, timers wrap the time package, and
// sockets come from the net package with SO_REUSEADDR applied to TCP
// listeners.
//
// This is the adapter production code should default to.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/offload"
	"github.com/unifyrt/unify/internal/sockopt"
	"github.com/unifyrt/unify/pkg/resolver"
)

// Config holds adapter tuning parameters.
type Config struct {
	// BlockingPoolSize caps concurrently running blocking offloads.
	// Zero selects the default derived from the physical CPU count.
	BlockingPoolSize int
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() *Config {
	return &Config{
		BlockingPoolSize: offload.DefaultSize(),
	}
}

// VerifyConfig reports whether conf is usable.
func VerifyConfig(conf *Config) error {
	if conf == nil {
		return fmt.Errorf("config is nil")
	}
	if conf.BlockingPoolSize < 0 {
		return fmt.Errorf("blocking pool size must not be negative, got %d", conf.BlockingPoolSize)
	}
	return nil
}

// Runtime implements api.Runtime on plain goroutines.
type Runtime struct {
	pool *offload.Pool
	res  *resolver.Resolver
}

var _ api.Runtime = (*Runtime)(nil)

// New builds a Runtime. A nil conf selects DefaultConfig.
func New(conf *Config) (*Runtime, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}
	pool, err := offload.NewPool(conf.BlockingPoolSize)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{pool: pool}
	rt.res = resolver.New(rt)
	return rt, nil
}

// Close shuts the blocking pool down. Blocking work already running
// finishes; queued work is discarded. Goroutines started through Exec are
// not tracked and keep running.
func (r *Runtime) Close() error {
	r.pool.Close()
	return nil
}

// Exec starts run on its own goroutine.
func (r *Runtime) Exec(run func()) error {
	if run == nil {
		return errors.New("goroutine: nil task")
	}
	go run()
	return nil
}

// ExecBlocking queues run on the offload pool. Admission order is
// execution order, and at most the configured number of offloads run at
// once.
func (r *Runtime) ExecBlocking(run func()) error {
	return r.pool.Submit(run)
}

// BlockingRunning reports the number of offloads currently executing.
func (r *Runtime) BlockingRunning() int { return r.pool.Running() }

// BlockingCap reports the offload worker bound.
func (r *Runtime) BlockingCap() int { return r.pool.Cap() }

// Sleep suspends the caller for at least d or until ctx ends.
func (r *Runtime) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// After arms a one-shot clock.
func (r *Runtime) After(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

type ticker struct {
	t *time.Ticker
}

func (t ticker) C() <-chan time.Time { return t.t.C }
func (t ticker) Stop()               { t.t.Stop() }

// NewTicker arms a periodic clock. The first delivery comes one full
// period after the call.
func (r *Runtime) NewTicker(d time.Duration) api.Ticker {
	return ticker{t: time.NewTicker(d)}
}

// Listen opens a listener. TCP listeners get SO_REUSEADDR so rebinds
// do not trip over sockets in TIME_WAIT.
func (r *Runtime) Listen(ctx context.Context, network, address string) (net.Listener, error) {
	var lc net.ListenConfig
	if strings.HasPrefix(network, "tcp") {
		lc.Control = sockopt.ReuseAddr
	}
	return lc.Listen(ctx, network, address)
}

// Dial opens a connection, honoring ctx for cancellation and deadline.
func (r *Runtime) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

// Resolve turns host into an ordered address set using the runtime's own
// blocking offload path for the OS lookup.
func (r *Runtime) Resolve(ctx context.Context, host string, port uint16) (api.ResolvedSet, error) {
	return r.res.Resolve(ctx, host, port)
}
