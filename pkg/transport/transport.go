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

// Package transport provides connection-oriented byte streams over TCP and
// unix domain sockets behind a single endpoint-addressed interface.
//
// A Transport is built on an api.Runtime and uses only its capabilities:
// sockets come from the runtime's NetProvider, symbolic hosts go through
// its Resolver, and retry pauses use its Timer. Swapping the runtime swaps
// the scheduling model without touching transport code.
//
// Failures surface as the canonical error set of package api, so callers
// branch with errors.Is(err, api.ErrConnectionRefused) and friends rather
// than matching platform errnos.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/logger"
	"github.com/unifyrt/unify/pkg/endpoint"
)

// Transport opens and accepts streams addressed by endpoint values.
type Transport struct {
	rt   api.Runtime
	conf *Config

	tracer  trace.Tracer
	dials   metric.Int64Counter
	accepts metric.Int64Counter
}

// New builds a Transport on top of rt. A nil conf selects DefaultConfig.
func New(rt api.Runtime, conf *Config) (*Transport, error) {
	if rt == nil {
		return nil, fmt.Errorf("runtime is nil")
	}
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}

	meter := conf.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	tracer := conf.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	dials, err := meter.Int64Counter("unify.transport.dials",
		metric.WithDescription("Connect attempts issued through this transport."))
	if err != nil {
		return nil, fmt.Errorf("dial counter: %w", err)
	}
	accepts, err := meter.Int64Counter("unify.transport.accepts",
		metric.WithDescription("Connections accepted through this transport."))
	if err != nil {
		return nil, fmt.Errorf("accept counter: %w", err)
	}

	return &Transport{
		rt:      rt,
		conf:    conf,
		tracer:  tracer,
		dials:   dials,
		accepts: accepts,
	}, nil
}

// Bind opens a listener on ep. Network endpoints listen on TCP, path
// endpoints on a unix domain socket. Binding port 0 picks a free port;
// the listener's Endpoint reports the actual one.
//
// A unix bind that hits a leftover socket file from a dead process
// removes it and retries once. The file is only removed when it really
// is a socket and no listener answers on it; anything else keeps the
// bind failing with ErrAddressInUse.
func (t *Transport) Bind(ctx context.Context, ep endpoint.Endpoint) (*Listener, error) {
	if !ep.IsValid() {
		return nil, fmt.Errorf("%w: zero endpoint", api.ErrMalformedEndpoint)
	}
	ctx, span := t.tracer.Start(ctx, "unify.transport.bind")
	defer span.End()

	network := ep.Kind().NetworkName()
	ln, err := t.listen(ctx, network, ep.String())
	if err != nil && network == "unix" && errors.Is(err, api.ErrAddressInUse) {
		if rerr := t.clearStaleSocket(ctx, ep.SocketPath()); rerr != nil {
			logger.Debugf("transport: keeping %s: %v", ep.SocketPath(), rerr)
		} else {
			ln, err = t.listen(ctx, network, ep.String())
		}
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	bound, err := endpoint.FromNetAddr(ln.Addr())
	if err != nil {
		_ = ln.Close()
		span.RecordError(err)
		return nil, err
	}
	logger.Debugf("transport: bound %s listener on %s", network, bound)
	return t.newListener(ln, bound), nil
}

func (t *Transport) listen(ctx context.Context, network, address string) (net.Listener, error) {
	ln, err := t.rt.Listen(ctx, network, address)
	if err != nil {
		return nil, classify(err)
	}
	return ln, nil
}

// clearStaleSocket removes path when it is a socket file that no process
// listens on anymore. A live listener or a non-socket file is left alone.
func (t *Transport) clearStaleSocket(ctx context.Context, path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s is not a socket", path)
	}

	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	conn, derr := t.rt.Dial(probeCtx, "unix", path)
	if derr == nil {
		_ = conn.Close()
		return fmt.Errorf("socket %s has a live listener", path)
	}
	if !errors.Is(classify(derr), api.ErrConnectionRefused) {
		return derr
	}

	logger.Warnf("transport: removing stale socket %s", path)
	return os.Remove(path)
}

// Connect opens a stream to ep, spending at most the configured dial
// timeout on the attempt.
func (t *Transport) Connect(ctx context.Context, ep endpoint.Endpoint) (*Stream, error) {
	if !ep.IsValid() {
		return nil, fmt.Errorf("%w: zero endpoint", api.ErrMalformedEndpoint)
	}
	ctx, span := t.tracer.Start(ctx, "unify.transport.connect")
	defer span.End()

	network := ep.Kind().NetworkName()
	dialCtx, cancel := context.WithTimeout(ctx, t.conf.DialTimeout)
	defer cancel()

	t.dials.Add(ctx, 1)
	conn, err := t.rt.Dial(dialCtx, network, ep.String())
	if err != nil {
		err = classify(err)
		dialsTotal.WithLabelValues(network, "error").Inc()
		span.RecordError(err)
		return nil, err
	}
	dialsTotal.WithLabelValues(network, "ok").Inc()
	return t.newStream(conn), nil
}

// ConnectHost resolves host and tries each returned address in resolution
// order until one connect succeeds. On exhaustion the error of the last
// attempt is returned.
func (t *Transport) ConnectHost(ctx context.Context, host string, port uint16) (*Stream, error) {
	set, err := t.rt.Resolve(ctx, host, port)
	if err != nil {
		return nil, err
	}

	var attempts int
	var lastErr error
	for _, ap := range set {
		attempts++
		s, derr := t.Connect(ctx, endpoint.Network(ap))
		if derr == nil {
			connectAttempts.Observe(float64(attempts))
			return s, nil
		}
		lastErr = derr
		if ctx.Err() != nil {
			break
		}
		logger.Debugf("transport: connect %s attempt %d/%d failed: %v", host, attempts, len(set), derr)
	}
	connectAttempts.Observe(float64(attempts))

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: resolver returned no addresses for %q", api.ErrResolutionFailed, host)
	}
	return nil, lastErr
}

// Dial connects to an address in string form. Literal endpoints such as
// "127.0.0.1:80", "[::1]:443" or "/run/app.sock" connect directly;
// host:port with a symbolic host resolves first and then behaves like
// ConnectHost.
func (t *Transport) Dial(ctx context.Context, address string) (*Stream, error) {
	ep, perr := endpoint.Parse(address)
	if perr == nil {
		return t.Connect(ctx, ep)
	}
	host, port, herr := endpoint.SplitHostPort(address)
	if herr != nil {
		return nil, perr
	}
	return t.ConnectHost(ctx, host, port)
}
