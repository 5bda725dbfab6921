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
	"io"

	"github.com/valyala/bytebufferpool"
)

// defaultBufSize is the read chunk size and the write flush threshold.
const defaultBufSize = 8 << 10

// BufferedStream wraps a Stream with pooled read and write buffers.
// Small writes coalesce until Flush or the flush threshold; small reads
// are served from the last read chunk. Reads and writes at least as large
// as the buffer bypass it.
//
// The buffers come from a process-wide pool and go back on Close. A
// BufferedStream is not safe for concurrent use on the same side.
type BufferedStream struct {
	s    *Stream
	rbuf *bytebufferpool.ByteBuffer
	rpos int
	wbuf *bytebufferpool.ByteBuffer
}

// NewBufferedStream wraps s. The caller must use the wrapper exclusively
// from then on; mixing buffered and direct calls loses data.
func NewBufferedStream(s *Stream) *BufferedStream {
	return &BufferedStream{
		s:    s,
		rbuf: bytebufferpool.Get(),
		wbuf: bytebufferpool.Get(),
	}
}

// Stream returns the wrapped stream.
func (b *BufferedStream) Stream() *Stream {
	return b.s
}

// Buffered returns the number of unread bytes sitting in the read buffer.
func (b *BufferedStream) Buffered() int {
	return len(b.rbuf.B) - b.rpos
}

// Pending returns the number of written bytes not yet flushed.
func (b *BufferedStream) Pending() int {
	return b.wbuf.Len()
}

func (b *BufferedStream) ensureCap() {
	if cap(b.rbuf.B) < defaultBufSize {
		nb := make([]byte, len(b.rbuf.B), defaultBufSize)
		copy(nb, b.rbuf.B)
		b.rbuf.B = nb
	}
}

// fillMore compacts the read buffer and reads one more chunk from the
// stream. It returns nil whenever at least one new byte arrived.
func (b *BufferedStream) fillMore(ctx context.Context) error {
	b.ensureCap()
	if b.rpos > 0 {
		n := copy(b.rbuf.B, b.rbuf.B[b.rpos:])
		b.rbuf.B = b.rbuf.B[:n]
		b.rpos = 0
	}
	start := len(b.rbuf.B)
	b.rbuf.B = b.rbuf.B[:cap(b.rbuf.B)]
	n, err := b.s.Read(ctx, b.rbuf.B[start:])
	b.rbuf.B = b.rbuf.B[:start+n]
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// Read behaves like Stream.Read but serves small reads from the buffer.
func (b *BufferedStream) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.Buffered() == 0 {
		if len(p) >= defaultBufSize {
			return b.s.Read(ctx, p)
		}
		if err := b.fillMore(ctx); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.rbuf.B[b.rpos:])
	b.rpos += n
	return n, nil
}

// ReadByte reads a single byte.
func (b *BufferedStream) ReadByte(ctx context.Context) (byte, error) {
	if b.Buffered() == 0 {
		if err := b.fillMore(ctx); err != nil {
			return 0, err
		}
	}
	c := b.rbuf.B[b.rpos]
	b.rpos++
	return c, nil
}

// Peek returns the next n bytes without consuming them. The returned
// slice aliases the read buffer and is only valid until the next call on
// b. Peek blocks until n bytes are buffered.
func (b *BufferedStream) Peek(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > defaultBufSize {
		return nil, fmt.Errorf("peek %d exceeds buffer size %d", n, defaultBufSize)
	}
	for b.Buffered() < n {
		if err := b.fillMore(ctx); err != nil {
			return nil, err
		}
	}
	return b.rbuf.B[b.rpos : b.rpos+n], nil
}

// Write queues p for sending. Writes at least as large as the buffer
// flush pending bytes and go straight to the stream.
func (b *BufferedStream) Write(ctx context.Context, p []byte) (int, error) {
	if len(p) >= defaultBufSize {
		if err := b.Flush(ctx); err != nil {
			return 0, err
		}
		return b.s.Write(ctx, p)
	}
	b.wbuf.B = append(b.wbuf.B, p...)
	if len(b.wbuf.B) >= defaultBufSize {
		if err := b.Flush(ctx); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Flush sends all pending bytes to the stream.
func (b *BufferedStream) Flush(ctx context.Context) error {
	if b.wbuf == nil || b.wbuf.Len() == 0 {
		return nil
	}
	n, err := b.s.Write(ctx, b.wbuf.B)
	if err != nil {
		if n > 0 {
			rest := copy(b.wbuf.B, b.wbuf.B[n:])
			b.wbuf.B = b.wbuf.B[:rest]
		}
		return err
	}
	b.wbuf.Reset()
	return nil
}

// Close flushes pending writes, closes the stream and returns the buffers
// to the pool. Close is idempotent.
func (b *BufferedStream) Close() error {
	if b.rbuf == nil {
		return nil
	}
	flushErr := b.Flush(context.Background())
	closeErr := b.s.Close()
	bytebufferpool.Put(b.rbuf)
	bytebufferpool.Put(b.wbuf)
	b.rbuf, b.wbuf = nil, nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
