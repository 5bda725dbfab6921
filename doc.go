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

// Package unify is the front door of the runtime abstraction. Libraries
// written against it schedule work, keep time, resolve names and move
// bytes without naming the machinery underneath, so the embedding
// application decides how all of that actually runs.
//
// The layering:
//
//   - api declares the capability contracts: Executor, Timer, Resolver,
//     NetProvider and their aggregate, Runtime.
//   - pkg/task, pkg/transport, pkg/endpoint and pkg/resolver build on any
//     Runtime: typed task handles, streams and listeners, address
//     handling, name resolution.
//   - adapter/goroutine and adapter/serial are the shipped Runtime
//     implementations; adapter/conformance checks custom ones against
//     the same contract.
//
// Most programs start with the default runtime and hand it to whatever
// needs one:
//
//	rt, err := unify.NewRuntime()
//	if err != nil {
//		return err
//	}
//	defer rt.Close()
//
//	h := task.Spawn(ctx, rt, fetch)
//	v, err := h.Await(ctx)
package unify
