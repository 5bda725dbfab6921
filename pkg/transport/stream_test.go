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
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/suite"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/pkg/endpoint"
)

type StreamTestSuite struct {
	suite.Suite

	rt *testRuntime
	tr *Transport
}

func (s *StreamTestSuite) SetupTest() {
	s.rt = newTestRuntime()
	tr, err := New(s.rt, nil)
	s.Require().Nil(err)
	s.tr = tr
}

func (s *StreamTestSuite) pair(ep endpoint.Endpoint) (client, server *Stream) {
	return mustPair(&s.Suite, s.tr, ep)
}

func (s *StreamTestSuite) tcpPair() (client, server *Stream) {
	return s.pair(endpoint.Network(netip.MustParseAddrPort("127.0.0.1:0")))
}

func (s *StreamTestSuite) TestReadCancelLeavesStreamUsable() {
	client, server := s.tcpPair()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	buf := make([]byte, 8)
	n, err := client.Read(ctx, buf)
	s.Require().Equal(0, n)
	s.Require().True(errors.Is(err, api.ErrCancelled))

	// The cancelled read must not poison later reads.
	_, err = server.Write(context.Background(), []byte("later"))
	s.Require().Nil(err)
	n, err = client.Read(context.Background(), buf)
	s.Require().Nil(err)
	s.Require().Equal("later", string(buf[:n]))
}

func (s *StreamTestSuite) TestReadDeadlineMapsToTimedOut() {
	client, _ := s.tcpPair()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Read(ctx, make([]byte, 8))
	s.Require().True(errors.Is(err, api.ErrTimedOut))
	s.Require().Less(time.Since(start), 2*time.Second)
}

func (s *StreamTestSuite) TestReadReportsEOFOnPeerClose() {
	client, server := s.tcpPair()
	s.Require().Nil(server.Close())

	_, err := client.Read(context.Background(), make([]byte, 8))
	s.Require().True(errors.Is(err, io.EOF))
	s.Require().False(errors.Is(err, api.ErrFailed))
}

func (s *StreamTestSuite) TestWriteAfterPeerResetClassified() {
	client, server := s.tcpPair()

	// Linger 0 turns the close into a hard reset.
	tcp, ok := server.NetConn().(*net.TCPConn)
	s.Require().True(ok)
	s.Require().Nil(tcp.SetLinger(0))
	s.Require().Nil(server.Close())

	// The first writes may still land in buffers; keep writing until the
	// reset surfaces.
	err := backoff.Retry(func() error {
		_, werr := client.Write(context.Background(), bytes.Repeat([]byte("x"), 1024))
		if werr == nil {
			return errors.New("write still succeeding")
		}
		if errors.Is(werr, api.ErrConnectionReset) {
			return nil
		}
		return backoff.Permanent(werr)
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 100))
	s.Require().Nil(err)
}

func (s *StreamTestSuite) TestWriteDeadlineWhenPeerStalls() {
	// Unix socket buffers are small, so a stalled peer backs writes up
	// quickly.
	client, _ := s.pair(endpoint.Path(filepath.Join(s.T().TempDir(), "stall.sock")))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	chunk := bytes.Repeat([]byte("y"), 1<<20)
	var err error
	for i := 0; i < 64 && err == nil; i++ {
		_, err = client.Write(ctx, chunk)
	}
	s.Require().True(errors.Is(err, api.ErrTimedOut))
}

func (s *StreamTestSuite) TestEndpointsDescribeBothSides() {
	client, server := s.tcpPair()

	s.Require().Equal(endpoint.KindNetwork, client.Endpoint().Kind())
	s.Require().Equal(endpoint.KindNetwork, client.LocalEndpoint().Kind())
	s.Require().Equal(client.LocalEndpoint(), server.Endpoint())
	s.Require().Equal(client.Endpoint(), server.LocalEndpoint())
}

func (s *StreamTestSuite) TestUnixEndpointsCarryPath() {
	path := filepath.Join(s.T().TempDir(), "ep.sock")
	client, server := s.pair(endpoint.Path(path))

	s.Require().Equal(endpoint.KindPath, client.Endpoint().Kind())
	s.Require().Equal(path, client.Endpoint().SocketPath())
	s.Require().Equal(path, server.LocalEndpoint().SocketPath())
}

func (s *StreamTestSuite) TestFullDuplexTransfer() {
	client, server := s.tcpPair()
	ctx := context.Background()

	const msgs = 50
	errc := make(chan error, 2)
	go func() {
		buf := make([]byte, 4)
		for i := 0; i < msgs; i++ {
			if _, err := server.Write(ctx, []byte("srv>")); err != nil {
				errc <- err
				return
			}
			for read := 0; read < len(buf); {
				n, err := server.Read(ctx, buf[read:])
				if err != nil {
					errc <- err
					return
				}
				read += n
			}
		}
		errc <- nil
	}()
	go func() {
		buf := make([]byte, 4)
		for i := 0; i < msgs; i++ {
			if _, err := client.Write(ctx, []byte("cli>")); err != nil {
				errc <- err
				return
			}
			for read := 0; read < len(buf); {
				n, err := client.Read(ctx, buf[read:])
				if err != nil {
					errc <- err
					return
				}
				read += n
			}
		}
		errc <- nil
	}()

	s.Require().Nil(<-errc)
	s.Require().Nil(<-errc)
}

func (s *StreamTestSuite) TestCloseIsIdempotent() {
	client, _ := s.tcpPair()
	s.Require().Nil(client.Close())
	s.Require().Nil(client.Close())
}

func TestStreamTestSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}
