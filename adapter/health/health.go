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

// Package health exposes a runtime's vital signs as HTTP liveness and
// readiness endpoints. Liveness watches the process itself; readiness
// round-trips real work through the runtime so a wedged executor or a
// broken resolver takes the instance out of rotation.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/unifyrt/unify/api"
)

const (
	defaultCheckTimeout  = time.Second
	defaultMaxGoroutines = 10000
	defaultResolveHost   = "localhost"
)

// Config holds health endpoint tuning parameters.
type Config struct {
	// CheckTimeout bounds each readiness probe.
	CheckTimeout time.Duration
	// MaxGoroutines fails liveness once the process exceeds it.
	MaxGoroutines int
	// ResolveHost is the name the resolver readiness probe looks up.
	ResolveHost string
}

// DefaultConfig returns the default health configuration.
func DefaultConfig() *Config {
	return &Config{
		CheckTimeout:  defaultCheckTimeout,
		MaxGoroutines: defaultMaxGoroutines,
		ResolveHost:   defaultResolveHost,
	}
}

// VerifyConfig reports whether conf is usable.
func VerifyConfig(conf *Config) error {
	if conf == nil {
		return fmt.Errorf("config is nil")
	}
	if conf.CheckTimeout <= 0 {
		return fmt.Errorf("check timeout must be positive, got %v", conf.CheckTimeout)
	}
	if conf.MaxGoroutines <= 0 {
		return fmt.Errorf("max goroutines must be positive, got %d", conf.MaxGoroutines)
	}
	if conf.ResolveHost == "" {
		return fmt.Errorf("resolve host must not be empty")
	}
	return nil
}

// NewHandler builds a healthcheck.Handler probing rt. A nil conf selects
// DefaultConfig. Mount the handler on an HTTP mux; it serves /live and
// /ready.
func NewHandler(rt api.Runtime, conf *Config) (healthcheck.Handler, error) {
	if rt == nil {
		return nil, errors.New("health: nil runtime")
	}
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}

	h := healthcheck.NewHandler()
	h.AddLivenessCheck("goroutine-count", healthcheck.GoroutineCountCheck(conf.MaxGoroutines))
	h.AddReadinessCheck("executor", ExecutorCheck(rt, conf.CheckTimeout))
	h.AddReadinessCheck("offload", OffloadCheck(rt, conf.CheckTimeout))
	h.AddReadinessCheck("resolver", ResolverCheck(rt, conf.ResolveHost, conf.CheckTimeout))
	return h, nil
}

// ExecutorCheck round-trips a no-op task through Exec.
func ExecutorCheck(ex api.Executor, timeout time.Duration) healthcheck.Check {
	return func() error {
		if err := roundTrip(ex.Exec, timeout); err != nil {
			return fmt.Errorf("executor: %w", err)
		}
		return nil
	}
}

// OffloadCheck round-trips a no-op task through ExecBlocking. A full or
// closed blocking pool fails the probe.
func OffloadCheck(ex api.Executor, timeout time.Duration) healthcheck.Check {
	return func() error {
		if err := roundTrip(ex.ExecBlocking, timeout); err != nil {
			return fmt.Errorf("offload: %w", err)
		}
		return nil
	}
}

// ResolverCheck resolves host through the runtime's resolver.
func ResolverCheck(rt api.Runtime, host string, timeout time.Duration) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := rt.Resolve(ctx, host, 0); err != nil {
			return fmt.Errorf("resolver: %w", err)
		}
		return nil
	}
}

func roundTrip(submit func(func()) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	if err := submit(func() { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
