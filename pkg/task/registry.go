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

package task

import (
	"sort"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// The live registry tracks every spawned task from submission to terminal
// state, keyed by task ID. Detached tasks stay tracked until their work
// finishes, so in-flight background work remains visible to health probes
// and debugging even with no handle left.
var live = cmap.New[*liveEntry]()

type liveEntry struct {
	blocking bool
	started  time.Time
	state    *atomic.Uint32
}

// Info is a point-in-time description of one live task.
type Info struct {
	ID       string
	Blocking bool
	Started  time.Time
	State    State
}

func register(id string, blocking bool, state *atomic.Uint32) {
	live.Set(id, &liveEntry{blocking: blocking, started: time.Now(), state: state})
	tasksLive.Inc()
}

func unregister(id string) {
	if _, ok := live.Get(id); !ok {
		return
	}
	live.Remove(id)
	tasksLive.Dec()
}

// Live reports how many tasks are currently tracked: running, plus
// detached work that has not finished yet.
func Live() int { return live.Count() }

// Snapshot returns Info for every tracked task, ordered by spawn time
// (task IDs are ULIDs, so lexicographic order is chronological).
func Snapshot() []Info {
	items := live.Items()
	out := make([]Info, 0, len(items))
	for id, e := range items {
		out = append(out, Info{
			ID:       id,
			Blocking: e.blocking,
			Started:  e.started,
			State:    State(e.state.Load()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
