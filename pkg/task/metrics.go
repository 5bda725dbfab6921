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

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksSpawned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unify_tasks_spawned_total",
		Help: "Tasks submitted to an executor, by submission kind.",
	}, []string{"kind"})

	tasksFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unify_tasks_finished_total",
		Help: "Tasks that reached a terminal state, by state.",
	}, []string{"state"})

	tasksDetached = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unify_tasks_detached_total",
		Help: "Handles released while their work was still running.",
	})

	tasksLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unify_tasks_live",
		Help: "Tasks tracked by the live registry.",
	})

	timeoutsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unify_timeouts_expired_total",
		Help: "Timeout races lost to the deadline.",
	})
)

func init() {
	prometheus.MustRegister(tasksSpawned, tasksFinished, tasksDetached, tasksLive, timeoutsExpired)
}
