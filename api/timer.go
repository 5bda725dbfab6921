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
	"time"
)

// Timer provides suspension and deadline primitives. Implementations must
// never busy-poll; a waiting task cedes its worker until the clock fires.
type Timer interface {
	// Sleep suspends the calling task for at least d. There is no upper
	// bound beyond scheduler fairness. Sleep returns early with the
	// context's cause if ctx is cancelled first.
	Sleep(ctx context.Context, d time.Duration) error

	// After arms a one-shot clock. The returned channel delivers a single
	// value once d has elapsed; the stop function releases the underlying
	// timer early and may be called more than once.
	After(d time.Duration) (<-chan time.Time, func())

	// NewTicker arms a periodic clock with period d. The first delivery
	// arrives one full period after the call, not immediately.
	NewTicker(d time.Duration) Ticker
}

// Ticker is a periodic clock handed out by Timer.NewTicker. Stop releases
// the timer resources; it does not close C.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}
