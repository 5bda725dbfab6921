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
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/pkg/endpoint"
)

// Stream is a reliable, ordered byte stream between two endpoints.
//
// Read and Write take a context and unblock when it ends, leaving the
// stream usable for further calls. Cancellation interrupts the waiting
// call only; it does not close or poison the connection.
type Stream struct {
	conn   net.Conn
	local  endpoint.Endpoint
	remote endpoint.Endpoint
	once   sync.Once
}

func (t *Transport) newStream(conn net.Conn) *Stream {
	// Unnamed unix peers have no address; those endpoints stay zero.
	local, _ := endpoint.FromNetAddr(conn.LocalAddr())
	remote, _ := endpoint.FromNetAddr(conn.RemoteAddr())
	streamsOpen.Inc()
	return &Stream{conn: conn, local: local, remote: remote}
}

// withWake runs one blocking I/O op, waking it through a deadline in the
// past when ctx ends. The deadline is restored afterwards so later calls
// on the same side are unaffected. When the op completes and ctx ends at
// the same moment, the op's result wins.
func (s *Stream) withWake(ctx context.Context, setDeadline func(time.Time) error, op func() (int, error)) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return 0, classify(context.Cause(ctx))
	}
	if ctx.Done() == nil {
		n, err := op()
		return n, classify(err)
	}

	woke := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = setDeadline(time.Now())
		close(woke)
	})
	n, err := op()
	if !stop() {
		// The wake started; wait for its deadline write before undoing it.
		<-woke
		_ = setDeadline(time.Time{})
		if err != nil && ctx.Err() != nil {
			return n, classify(context.Cause(ctx))
		}
	}
	return n, classify(err)
}

// Read fills p with the next bytes from the peer. It returns io.EOF once
// the peer shuts down its write side, ErrCancelled when ctx is cancelled
// and ErrTimedOut when a ctx deadline passes.
func (s *Stream) Read(ctx context.Context, p []byte) (int, error) {
	return s.withWake(ctx, s.conn.SetReadDeadline, func() (int, error) {
		return s.conn.Read(p)
	})
}

// Write sends p to the peer, blocking until every byte is handed to the
// kernel. A short count is always paired with a non-nil error.
func (s *Stream) Write(ctx context.Context, p []byte) (int, error) {
	return s.withWake(ctx, s.conn.SetWriteDeadline, func() (int, error) {
		return s.conn.Write(p)
	})
}

// Close tears the stream down. Blocked reads and writes on it fail.
// Close is idempotent.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		streamsOpen.Dec()
		err = s.conn.Close()
	})
	return err
}

// Endpoint returns the remote peer's endpoint. It is the zero Endpoint
// for peers without an address, such as unnamed unix sockets.
func (s *Stream) Endpoint() endpoint.Endpoint {
	return s.remote
}

// LocalEndpoint returns the local endpoint of the stream. For dialed TCP
// streams this carries the kernel-chosen source address and port.
func (s *Stream) LocalEndpoint() endpoint.Endpoint {
	return s.local
}

// NetConn exposes the underlying connection for code that needs plain
// io.Reader/io.Writer semantics. Deadlines set on it are managed by Read
// and Write; mixing both styles on the same side is not supported.
func (s *Stream) NetConn() net.Conn {
	return s.conn
}

// File returns a duplicate of the stream's descriptor for handing off to
// another process. The caller owns the returned file.
func (s *Stream) File() (*os.File, error) {
	f, ok := s.conn.(filer)
	if !ok {
		return nil, fmt.Errorf("%w: stream %T exposes no descriptor", api.ErrFailed, s.conn)
	}
	return f.File()
}

// StreamFromFile rebuilds a Stream from a descriptor obtained through
// File, typically after it crossed a process boundary.
func (t *Transport) StreamFromFile(f *os.File) (*Stream, error) {
	conn, err := net.FileConn(f)
	if err != nil {
		return nil, classify(err)
	}
	return t.newStream(conn), nil
}
