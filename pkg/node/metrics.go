// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Item and run outcomes used as metric labels and span attributes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeAborted = "aborted"
)

// Metrics records node execution counters. A nil *Metrics records nothing.
type Metrics struct {
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewMetrics registers the node collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		items: f.NewCounterVec(prometheus.CounterOpts{
			Name: "httpnode_items_total",
			Help: "Items processed by node and outcome",
		}, []string{"node", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpnode_item_duration_seconds",
			Help:    "Time spent processing one item",
			Buckets: prometheus.DefBuckets,
		}, []string{"node"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "httpnode_runs_total",
			Help: "Node executions by outcome",
		}, []string{"node", "outcome"}),
	}
}

func (m *Metrics) observeItem(node, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(node, outcome).Inc()
	m.duration.WithLabelValues(node).Observe(d.Seconds())
}

func (m *Metrics) observeRun(node, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(node, outcome).Inc()
}
