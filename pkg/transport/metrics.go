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

import "github.com/prometheus/client_golang/prometheus"

var (
	streamsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unify_transport_open_streams",
		Help: "Streams currently open, accepted and dialed combined.",
	})

	acceptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unify_transport_accepts_total",
		Help: "Connections accepted, partitioned by listener network.",
	}, []string{"network"})

	dialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unify_transport_dials_total",
		Help: "Connect outcomes, partitioned by network and result.",
	}, []string{"network", "outcome"})

	connectAttempts = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "unify_transport_connect_attempts",
		Help:    "Addresses tried per multi-address connect before success or exhaustion.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 5),
	})
)

func init() {
	prometheus.MustRegister(streamsOpen, acceptsTotal, dialsTotal, connectAttempts)
}
