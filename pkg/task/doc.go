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

// Package task layers typed handles and runtime-independent lifecycle
// algorithms over the untyped executor contract. The same code behaves
// identically on every conforming backend: a parallel goroutine pool and a
// strictly serialized worker see the same states, the same detach
// semantics, and the same timeout tie-breaks.
//
// A spawned unit of work is observed through a Handle:
//
//	h := task.Spawn(ctx, rt, func(ctx context.Context) (int, error) {
//	  return compute(ctx)
//	})
//	v, err := h.Await(ctx)
//
// Cancellation is cooperative everywhere. Cancel and Timeout only signal;
// the work stops at its next suspension point, and code that never
// suspends between the signal and a side effect will complete that side
// effect regardless. That is a caller-visible part of the contract, not an
// implementation detail.
//
// Releasing a handle without cancelling detaches the work: it keeps
// running and its result is discarded. Backends must never interpret a
// dropped handle as an implicit cancel; surprise cancellation is how
// half-written files happen.
package task
