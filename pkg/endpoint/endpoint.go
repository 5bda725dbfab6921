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

// Package endpoint parses and represents transport endpoints that are
// either a network socket address or a filesystem-path socket, under one
// syntax and one immutable in-memory representation.
//
// The accepted syntax is host:port for network endpoints, where host is an
// IPv4 literal, a bracketed IPv6 literal, or a symbolic name, and port is
// decimal 0-65535; or a filesystem path recognized by a leading /, ./ or
// ../ segment. Parsing is a pure function: it performs no I/O and never
// partially constructs an Endpoint.
package endpoint

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/unifyrt/unify/api"
)

// Kind tags the two endpoint variants. The tag of an Endpoint never changes
// after construction.
type Kind int

const (
	// KindNetwork is a network socket address: IP plus port.
	KindNetwork Kind = iota
	// KindPath is a filesystem-path socket.
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindPath:
		return "path"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// NetworkName returns the net package network identifier used to open
// sockets of this kind.
func (k Kind) NetworkName() string {
	if k == KindPath {
		return "unix"
	}
	return "tcp"
}

// Endpoint is a parsed transport endpoint. The zero value is a network
// endpoint with an invalid address; IsValid reports usability.
type Endpoint struct {
	kind Kind
	addr netip.AddrPort
	path string
}

// Network constructs a network endpoint from a resolved socket address.
func Network(addr netip.AddrPort) Endpoint {
	return Endpoint{kind: KindNetwork, addr: addr}
}

// Path constructs a filesystem-path endpoint. The path is kept exactly as
// given.
func Path(p string) Endpoint {
	return Endpoint{kind: KindPath, path: p}
}

// Parse parses s into an Endpoint.
//
// A symbolic host (for example "localhost:8080") is well-formed syntax but
// cannot become an Endpoint without resolution, which Parse never performs;
// it is rejected with ErrMalformedEndpoint like any other non-literal
// input. Use SplitHostPort together with a Resolver for that form.
func Parse(s string) (Endpoint, error) {
	if s == "" {
		return Endpoint{}, fmt.Errorf("%w: empty string", api.ErrMalformedEndpoint)
	}
	if isPath(s) {
		return Path(s), nil
	}
	host, port, err := SplitHostPort(s)
	if err != nil {
		return Endpoint{}, err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: host %q is not an IP literal", api.ErrMalformedEndpoint, host)
	}
	return Network(netip.AddrPortFrom(ip, port)), nil
}

// SplitHostPort splits s of the form host:port, where host may be an IP
// literal or a symbolic name. It validates the port range and rejects empty
// hosts, but does not resolve anything.
func SplitHostPort(s string) (host string, port uint16, err error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", api.ErrMalformedEndpoint, s)
	}
	if host == "" {
		return "", 0, fmt.Errorf("%w: empty host in %q", api.ErrMalformedEndpoint, s)
	}
	if strings.ContainsAny(host, "/ ") {
		return "", 0, fmt.Errorf("%w: invalid host in %q", api.ErrMalformedEndpoint, s)
	}
	n, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("%w: port %q out of range", api.ErrMalformedEndpoint, portStr)
	}
	return host, uint16(n), nil
}

// isPath reports whether s uses path syntax: absolute, or starting with a
// . or .. segment.
func isPath(s string) bool {
	return strings.HasPrefix(s, "/") ||
		s == "." || s == ".." ||
		strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")
}

// FromNetAddr converts a net package address into an Endpoint. TCP and unix
// addresses convert directly; anything else is rejected.
func FromNetAddr(a net.Addr) (Endpoint, error) {
	switch v := a.(type) {
	case *net.TCPAddr:
		return Network(v.AddrPort()), nil
	case *net.UnixAddr:
		return Path(v.Name), nil
	default:
		return Endpoint{}, fmt.Errorf("%w: unsupported address type %T", api.ErrMalformedEndpoint, a)
	}
}

// Kind returns the variant tag.
func (e Endpoint) Kind() Kind { return e.kind }

// AddrPort returns the socket address of a network endpoint. For a path
// endpoint it returns the zero AddrPort.
func (e Endpoint) AddrPort() netip.AddrPort {
	if e.kind != KindNetwork {
		return netip.AddrPort{}
	}
	return e.addr
}

// SocketPath returns the filesystem path of a path endpoint, or "" for a
// network endpoint.
func (e Endpoint) SocketPath() string {
	if e.kind != KindPath {
		return ""
	}
	return e.path
}

// IsValid reports whether e identifies a usable endpoint: a network
// endpoint with a valid address, or a path endpoint with a non-empty path.
func (e Endpoint) IsValid() bool {
	if e.kind == KindPath {
		return e.path != ""
	}
	return e.addr.IsValid()
}

// String serializes e back into the parse syntax. For network endpoints the
// result round-trips through Parse to the same value; for path endpoints it
// is the path exactly as constructed.
func (e Endpoint) String() string {
	if e.kind == KindPath {
		return e.path
	}
	return e.addr.String()
}

// MarshalText implements encoding.TextMarshaler using the String form.
func (e Endpoint) MarshalText() ([]byte, error) {
	if !e.IsValid() {
		return nil, fmt.Errorf("%w: zero endpoint", api.ErrMalformedEndpoint)
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via Parse.
func (e *Endpoint) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
