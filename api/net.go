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

package api

import (
	"context"
	"net"
	"net/netip"
)

// NetProvider supplies the OS socket primitives the unified transport runs
// on. network is "tcp" or "unix"; address is the form the net package
// accepts for that network.
//
// The provider owns nothing beyond socket creation. Ownership of the
// returned listener or connection passes to the caller, which must close
// it on every exit path.
type NetProvider interface {
	Listen(ctx context.Context, network, address string) (net.Listener, error)
	Dial(ctx context.Context, network, address string) (net.Conn, error)
}

// ResolvedSet is the ordered list of socket addresses produced by resolving
// one symbolic host. The order reflects resolver and OS preference and must
// be preserved by callers that sequence connect attempts over it. A
// successful resolution never yields an empty set.
type ResolvedSet []netip.AddrPort

// Resolver turns a symbolic host into a ResolvedSet without stalling the
// caller's scheduler peers. Underlying lookup system calls usually block,
// so implementations route them through Executor.ExecBlocking or an
// equivalent non-blocking OS facility.
//
// An empty host, a lookup error, or an empty answer fails with
// ErrResolutionFailed wrapping the cause.
type Resolver interface {
	Resolve(ctx context.Context, host string, port uint16) (ResolvedSet, error)
}
