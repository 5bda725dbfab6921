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

// Package resolver implements the name-resolution capability. Lookups run
// on the executor's blocking-offload path, so a resolving task suspends
// without stalling its scheduler peers, and identical in-flight queries
// are coalesced into one lookup.
package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/sync/singleflight"

	"github.com/unifyrt/unify/api"
	"github.com/unifyrt/unify/internal/logger"
)

// LookupFunc performs the underlying host lookup. It may block; the
// Resolver only ever calls it from the blocking-offload path.
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

func defaultLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

// Resolver satisfies api.Resolver on top of any executor. The zero value
// is not usable; construct with New.
type Resolver struct {
	ex     api.Executor
	lookup LookupFunc
	group  singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the default OS lookup. Intended for tests and for
// environments with their own resolution source.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookup = fn
		}
	}
}

// New builds a Resolver that offloads lookups through ex.
func New(ex api.Executor, opts ...Option) *Resolver {
	r := &Resolver{ex: ex, lookup: defaultLookup}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type lookupResult struct {
	addrs []netip.Addr
	err   error
}

// Resolve turns host into the ordered set of socket addresses for port.
// Literal IP hosts convert without any lookup. The returned order is the
// lookup's preference order, preserved for connect-attempt sequencing.
//
// An empty host, a failed lookup, or an empty answer fails with
// ErrResolutionFailed. Cancelling ctx abandons this caller's wait; a
// lookup shared with other callers keeps running for them.
func (r *Resolver) Resolve(ctx context.Context, host string, port uint16) (api.ResolvedSet, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", api.ErrResolutionFailed)
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return api.ResolvedSet{netip.AddrPortFrom(ip, port)}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ch := r.group.DoChan(host, func() (interface{}, error) {
		return r.offloadLookup(context.WithoutCancel(ctx), host)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: lookup %q: %w", api.ErrResolutionFailed, host, res.Err)
		}
		addrs := res.Val.([]netip.Addr)
		if res.Shared {
			logger.Tracef("resolver: lookup %q shared between callers", host)
		}
		set := make(api.ResolvedSet, len(addrs))
		for i, a := range addrs {
			set[i] = netip.AddrPortFrom(a, port)
		}
		return set, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// offloadLookup runs one lookup on the blocking pool and waits for it.
func (r *Resolver) offloadLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	done := make(chan lookupResult, 1)
	if err := r.ex.ExecBlocking(func() {
		addrs, err := r.lookup(ctx, host)
		done <- lookupResult{addrs: addrs, err: err}
	}); err != nil {
		return nil, fmt.Errorf("offload: %w", err)
	}
	res := <-done
	if res.err != nil {
		return nil, res.err
	}
	if len(res.addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %q", host)
	}
	return res.addrs, nil
}
