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

// Package serial adapts the unify capability contracts to a single-lane
// scheduler: tasks submitted through Exec run one at a time in submission
// order. Everything else, including blocking offloads, behaves like the
// goroutine adapter.
//
// The deterministic interleaving makes this adapter useful in tests and
// in code that relies on run-to-completion semantics between tasks.
package serial

import (
	"fmt"

	"github.com/unifyrt/unify/adapter/goroutine"
	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/offload"
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

// Runtime implements api.Runtime with serialized task execution. Exec
// runs tasks strictly one after another; blocking offloads keep their own
// concurrent pool so they cannot stall the task lane.
type Runtime struct {
	*goroutine.Runtime
	lane *offload.Pool
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
	base, err := goroutine.New(&goroutine.Config{BlockingPoolSize: conf.BlockingPoolSize})
	if err != nil {
		return nil, err
	}
	// One worker makes submission order the execution order.
	lane, err := offload.NewPool(1)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return &Runtime{Runtime: base, lane: lane}, nil
}

// Exec queues run on the single task lane. It returns before run starts;
// run executes after every previously submitted task has finished.
func (r *Runtime) Exec(run func()) error {
	return r.lane.Submit(run)
}

// Close shuts down the task lane and the blocking pool. Work already
// running finishes; queued work is discarded.
func (r *Runtime) Close() error {
	r.lane.Close()
	return r.Runtime.Close()
}
