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

//go:build unix

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/unifyrt/unify/api"
)

func TestClassifyMapsErrnosToCanonicalErrors(t *testing.T) {
	opErr := func(errno error) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", errno)}
	}

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"addr in use", opErr(unix.EADDRINUSE), api.ErrAddressInUse},
		{"eacces", opErr(unix.EACCES), api.ErrPermissionDenied},
		{"eperm", opErr(unix.EPERM), api.ErrPermissionDenied},
		{"refused", opErr(unix.ECONNREFUSED), api.ErrConnectionRefused},
		{"reset", opErr(unix.ECONNRESET), api.ErrConnectionReset},
		{"epipe", opErr(unix.EPIPE), api.ErrConnectionReset},
		{"etimedout", opErr(unix.ETIMEDOUT), api.ErrTimedOut},
		{"context canceled", context.Canceled, api.ErrCancelled},
		{"context deadline", context.DeadlineExceeded, api.ErrTimedOut},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.in)
			require.True(t, errors.Is(got, tc.want), "classify(%v) = %v, want %v", tc.in, got, tc.want)
			// The platform detail stays reachable for callers that need it.
			require.True(t, errors.Is(got, tc.in))
		})
	}
}

func TestClassifyPassesNonCanonicalThrough(t *testing.T) {
	require.Nil(t, classify(nil))
	require.Equal(t, io.EOF, classify(io.EOF))
	require.Equal(t, net.ErrClosed, classify(net.ErrClosed))

	odd := errors.New("something else entirely")
	require.Equal(t, odd, classify(odd))
}

func TestClassifyIsIdempotent(t *testing.T) {
	first := classify(&net.OpError{Op: "dial", Net: "tcp", Err: unix.ECONNREFUSED})
	second := classify(first)
	require.Equal(t, first, second)
}
