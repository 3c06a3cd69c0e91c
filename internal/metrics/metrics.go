// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics records stress workload outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results.
const (
	ResultOK        = "ok"
	ResultBlocked   = "would_block"
	ResultDuplicate = "duplicate"
	ResultMissing   = "missing"
)

// Recorder owns a private registry so several runs in one process do not
// collide with the default registry.
type Recorder struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	runs     *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lfds",
			Name:      "ops_total",
			Help:      "Operations performed by stress workers.",
		}, []string{"structure", "op", "result"}),
		runs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lfds",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a stress run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"structure"}),
	}
	r.registry.MustRegister(r.ops, r.runs)
	return r
}

// Ops returns the counter for one structure/op/result combination.
// Workers resolve it once and add locally batched counts.
func (r *Recorder) Ops(structure, op, result string) prometheus.Counter {
	return r.ops.WithLabelValues(structure, op, result)
}

// ObserveRun records the duration of a completed run.
func (r *Recorder) ObserveRun(structure string, d time.Duration) {
	r.runs.WithLabelValues(structure).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
