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

package endpoint

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/unifyrt/unify/api"
)

type EndpointTestSuite struct {
	suite.Suite
}

func (s *EndpointTestSuite) TestParseNetworkRoundTrip() {
	for _, in := range []string{
		"127.0.0.1:8080",
		"0.0.0.0:0",
		"10.2.3.4:65535",
		"[::1]:9090",
		"[2001:db8::1]:443",
	} {
		ep, err := Parse(in)
		s.Require().NoError(err, in)
		s.Require().Equal(KindNetwork, ep.Kind(), in)
		s.Require().Equal(in, ep.String(), in)

		again, err := Parse(ep.String())
		s.Require().NoError(err, in)
		s.Require().Equal(ep, again, in)
	}
}

func (s *EndpointTestSuite) TestParsePathPreserved() {
	for _, in := range []string{
		"/tmp/test.sock",
		"/var/run/unify/echo.sock",
		"./relative.sock",
		"../up/one.sock",
		"/path with spaces/s.sock",
	} {
		ep, err := Parse(in)
		s.Require().NoError(err, in)
		s.Require().Equal(KindPath, ep.Kind(), in)
		s.Require().Equal(in, ep.SocketPath(), in)
		s.Require().Equal(in, ep.String(), in)
	}
}

func (s *EndpointTestSuite) TestParseRejectsMalformed() {
	for _, in := range []string{
		"",
		"www.baidu.com",
		"invalid_address",
		"localhost:8080", // symbolic host needs resolution, not Parse
		":8080",
		"127.0.0.1:",
		"127.0.0.1:65536",
		"127.0.0.1:-1",
		"127.0.0.1:http",
		"::1:8080", // IPv6 must be bracketed
		"relative.sock",
	} {
		_, err := Parse(in)
		s.Require().Error(err, in)
		s.Require().ErrorIs(err, api.ErrMalformedEndpoint, in)
	}
}

func (s *EndpointTestSuite) TestSplitHostPort() {
	host, port, err := SplitHostPort("localhost:8080")
	s.Require().NoError(err)
	s.Require().Equal("localhost", host)
	s.Require().Equal(uint16(8080), port)

	host, port, err = SplitHostPort("example.com:443")
	s.Require().NoError(err)
	s.Require().Equal("example.com", host)
	s.Require().Equal(uint16(443), port)

	_, _, err = SplitHostPort("example.com")
	s.Require().ErrorIs(err, api.ErrMalformedEndpoint)

	_, _, err = SplitHostPort(":8080")
	s.Require().ErrorIs(err, api.ErrMalformedEndpoint)

	_, _, err = SplitHostPort("example.com:70000")
	s.Require().ErrorIs(err, api.ErrMalformedEndpoint)
}

func (s *EndpointTestSuite) TestConstructors() {
	ap := netip.MustParseAddrPort("192.168.1.10:7000")
	ep := Network(ap)
	s.Require().Equal(KindNetwork, ep.Kind())
	s.Require().Equal(ap, ep.AddrPort())
	s.Require().True(ep.IsValid())
	s.Require().Equal("", ep.SocketPath())

	pe := Path("/run/x.sock")
	s.Require().Equal(KindPath, pe.Kind())
	s.Require().Equal("/run/x.sock", pe.SocketPath())
	s.Require().True(pe.IsValid())
	s.Require().False(pe.AddrPort().IsValid())

	s.Require().False(Endpoint{}.IsValid())
}

func (s *EndpointTestSuite) TestFromNetAddr() {
	tcp := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9000}
	ep, err := FromNetAddr(tcp)
	s.Require().NoError(err)
	s.Require().Equal(KindNetwork, ep.Kind())
	s.Require().Equal("127.0.0.1:9000", ep.String())

	ux := &net.UnixAddr{Name: "/tmp/u.sock", Net: "unix"}
	ep, err = FromNetAddr(ux)
	s.Require().NoError(err)
	s.Require().Equal(KindPath, ep.Kind())
	s.Require().Equal("/tmp/u.sock", ep.SocketPath())

	_, err = FromNetAddr(&net.UDPAddr{})
	s.Require().ErrorIs(err, api.ErrMalformedEndpoint)
}

func (s *EndpointTestSuite) TestKindNetworkName() {
	s.Require().Equal("tcp", KindNetwork.NetworkName())
	s.Require().Equal("unix", KindPath.NetworkName())
}

func (s *EndpointTestSuite) TestTextMarshalling() {
	ep, err := Parse("127.0.0.1:8080")
	s.Require().NoError(err)
	text, err := ep.MarshalText()
	s.Require().NoError(err)
	s.Require().Equal("127.0.0.1:8080", string(text))

	var out Endpoint
	s.Require().NoError(out.UnmarshalText(text))
	s.Require().Equal(ep, out)

	_, err = Endpoint{}.MarshalText()
	s.Require().Error(err)

	s.Require().Error(out.UnmarshalText([]byte("not an endpoint")))
}

func TestEndpointTestSuite(t *testing.T) {
	suite.Run(t, new(EndpointTestSuite))
}
