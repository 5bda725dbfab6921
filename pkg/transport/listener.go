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
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/logger"
	"github.com/unifyrt/unify/pkg/endpoint"
)

// Listener accepts inbound streams on a bound endpoint.
//
// One background goroutine runs the blocking OS accept and hands each
// connection to exactly one Accept caller. Concurrent Accept calls are
// safe; a connection is never delivered twice.
type Listener struct {
	tr *Transport
	ln net.Listener
	ep endpoint.Endpoint

	conns  chan net.Conn
	closed chan struct{}
	once   sync.Once

	// acceptErr is set by the pump before conns is closed; reading it
	// after a closed-channel receive is ordered by the close.
	acceptErr error
}

func (t *Transport) newListener(ln net.Listener, ep endpoint.Endpoint) *Listener {
	l := &Listener{
		tr:     t,
		ln:     ln,
		ep:     ep,
		conns:  make(chan net.Conn),
		closed: make(chan struct{}),
	}
	go l.acceptLoop()
	return l
}

// acceptLoop is the single producer on l.conns. Transient accept failures
// (out of descriptors, aborted handshakes) back off and retry; anything
// else ends the loop and is surfaced to waiting Accept callers.
func (l *Listener) acceptLoop() {
	defer close(l.conns)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = 0

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.closed:
				l.acceptErr = net.ErrClosed
				return
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Temporary() {
				delay := bo.NextBackOff()
				logger.Warnf("transport: accept on %s: %v; retrying in %v", l.ep, err, delay)
				if !l.pause(delay) {
					l.acceptErr = net.ErrClosed
					return
				}
				continue
			}
			l.acceptErr = classify(err)
			return
		}
		bo.Reset()

		select {
		case l.conns <- conn:
		case <-l.closed:
			_ = conn.Close()
			return
		}
	}
}

// pause waits using the runtime timer; false means the listener closed.
func (l *Listener) pause(d time.Duration) bool {
	tick, stop := l.tr.rt.After(d)
	defer stop()
	select {
	case <-tick:
		return true
	case <-l.closed:
		return false
	}
}

// Accept waits for the next inbound stream. It unblocks with ErrCancelled
// when ctx is cancelled and with ErrTimedOut when a ctx deadline passes;
// the connection flow itself is unaffected in either case.
func (l *Listener) Accept(ctx context.Context) (*Stream, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case conn, ok := <-l.conns:
		if !ok {
			// Reading acceptErr here is ordered by the channel close.
			if err := l.acceptErr; err != nil && !errors.Is(err, net.ErrClosed) {
				return nil, err
			}
			return nil, fmt.Errorf("accept %s: %w", l.ep, net.ErrClosed)
		}
		l.tr.accepts.Add(ctx, 1)
		acceptsTotal.WithLabelValues(l.ep.Kind().NetworkName()).Inc()
		return l.tr.newStream(conn), nil
	case <-l.closed:
		return nil, fmt.Errorf("accept %s: %w", l.ep, net.ErrClosed)
	case <-ctx.Done():
		return nil, classify(context.Cause(ctx))
	}
}

// Endpoint returns the bound endpoint. After binding port 0 this carries
// the kernel-assigned port.
func (l *Listener) Endpoint() endpoint.Endpoint {
	return l.ep
}

// Addr exposes the underlying listener address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting and releases the socket. Streams already accepted
// stay open. Close is idempotent.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closed)
		err = l.ln.Close()
	})
	return err
}

type filer interface {
	File() (*os.File, error)
}

// File returns a duplicate of the listening socket's descriptor for
// handing off to another process. The caller owns the returned file. On
// unix sockets the handoff transfers path ownership too: closing this
// listener no longer unlinks the socket file.
func (l *Listener) File() (*os.File, error) {
	if ul, ok := l.ln.(*net.UnixListener); ok {
		ul.SetUnlinkOnClose(false)
	}
	f, ok := l.ln.(filer)
	if !ok {
		return nil, fmt.Errorf("%w: listener %T exposes no descriptor", api.ErrFailed, l.ln)
	}
	return f.File()
}

// ListenerFromFile rebuilds a Listener from a descriptor obtained through
// File, typically after it crossed a process boundary.
func (t *Transport) ListenerFromFile(f *os.File) (*Listener, error) {
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, classify(err)
	}
	ep, err := endpoint.FromNetAddr(ln.Addr())
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	return t.newListener(ln, ep), nil
}
