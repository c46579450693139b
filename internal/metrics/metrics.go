// Package metrics holds the prometheus collectors for resolutions and query
// execution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "asksql"

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	// resolutionsTotal counts pipeline runs.
	// Labels: function, outcome
	resolutionsTotal *prometheus.CounterVec

	// intentFailuresTotal counts questions the intent resolver could not map.
	intentFailuresTotal prometheus.Counter

	// executionSeconds measures warehouse round trips.
	// Labels: function, status (ok, error)
	executionSeconds *prometheus.HistogramVec

	// rowsReturned observes result sizes of successful executions.
	rowsReturned prometheus.Histogram
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "resolutions_total",
			Help:      "Call expressions resolved, by function and outcome",
		}, []string{"function", "outcome"}),
		intentFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intent",
			Name:      "failures_total",
			Help:      "Questions the intent resolver failed to translate",
		}),
		executionSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "warehouse",
			Name:      "execution_seconds",
			Help:      "Query execution latency by function and status",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"function", "status"}),
		rowsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "warehouse",
			Name:      "rows_returned",
			Help:      "Rows returned by successful executions",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordResolution counts one pipeline outcome. An empty function (the
// expression did not parse) is labelled "none".
func (m *Metrics) RecordResolution(function, outcome string) {
	if m == nil {
		return
	}
	if function == "" {
		function = "none"
	}
	m.resolutionsTotal.WithLabelValues(function, outcome).Inc()
}

// RecordIntentFailure counts one failed intent resolution.
func (m *Metrics) RecordIntentFailure() {
	if m == nil {
		return
	}
	m.intentFailuresTotal.Inc()
}

// RecordExecution observes one executor call.
func (m *Metrics) RecordExecution(function string, d time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.executionSeconds.WithLabelValues(function, status).Observe(d.Seconds())
	if err == nil {
		m.rowsReturned.Observe(float64(rows))
	}
}
