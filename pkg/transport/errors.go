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
	"io"
	"net"

	"github.com/unifyrt/unify/api"
)

// classify maps an operating-system or context failure onto the canonical
// error set, so callers can branch with errors.Is instead of inspecting
// platform errnos. Errors with no canonical equivalent pass through
// unchanged; io.EOF in particular stays io.EOF because it marks normal
// end of stream, not a fault.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return err
	case errors.Is(err, api.ErrCancelled), errors.Is(err, context.Canceled):
		return mark(api.ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return mark(api.ErrTimedOut, err)
	}
	if canon := errnoClass(err); canon != nil {
		return mark(canon, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return mark(api.ErrTimedOut, err)
	}
	return err
}

// mark prefixes err with its canonical sentinel unless it already carries
// it, keeping messages from stuttering when an error is classified twice.
func mark(canon, err error) error {
	if errors.Is(err, canon) {
		return err
	}
	return fmt.Errorf("%w: %w", canon, err)
}
