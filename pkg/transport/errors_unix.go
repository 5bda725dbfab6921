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
	"errors"

	"golang.org/x/sys/unix"

	"github.com/unifyrt/unify/api"
)

// errnoClass maps POSIX errnos onto the canonical error set. Returns nil
// when err carries no recognized errno.
func errnoClass(err error) error {
	switch {
	case errors.Is(err, unix.EADDRINUSE):
		return api.ErrAddressInUse
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return api.ErrPermissionDenied
	case errors.Is(err, unix.ECONNREFUSED):
		return api.ErrConnectionRefused
	case errors.Is(err, unix.ECONNRESET), errors.Is(err, unix.EPIPE):
		return api.ErrConnectionReset
	case errors.Is(err, unix.ETIMEDOUT):
		return api.ErrTimedOut
	default:
		return nil
	}
}
