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

package offload

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unify_blocking_queue_depth",
		Help: "Blocking offloads waiting for a free pool worker.",
	})

	offloadsAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unify_blocking_offloads_total",
		Help: "Total blocking offloads admitted to the pool queue.",
	})
)

func init() {
	prometheus.MustRegister(queueDepth, offloadsAdmitted)
}
