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

package transport

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialTimeout = 10 * time.Second

	// instrumentationName labels the OTel instruments of this package.
	instrumentationName = "github.com/unifyrt/unify/pkg/transport"
)

// Config holds transport tuning parameters.
type Config struct {
	// DialTimeout bounds each individual connect attempt. A multi-address
	// connect spends up to DialTimeout per candidate address.
	DialTimeout time.Duration

	// Meter receives per-transport dial and accept counters. Leave nil to
	// disable OTel metrics.
	Meter metric.Meter

	// Tracer wraps bind and connect operations in spans. Leave nil to
	// disable tracing.
	Tracer trace.Tracer
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() *Config {
	return &Config{
		DialTimeout: defaultDialTimeout,
	}
}

// VerifyConfig reports whether conf is usable.
func VerifyConfig(conf *Config) error {
	if conf == nil {
		return fmt.Errorf("config is nil")
	}
	if conf.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %v", conf.DialTimeout)
	}
	return nil
}
