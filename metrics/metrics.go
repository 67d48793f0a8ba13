// Package metrics records operation counters and timings for a single cmf
// invocation and writes them in the Prometheus text exposition format, for
// collection by a node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "op" label.
const (
	OpCompile = "compile"
	OpLoad    = "load"
	OpMerge   = "merge"
	OpWrite   = "write"
	OpExport  = "export"
)

// Metrics holds collectors registered with a private registry. A nil
// *Metrics discards all observations.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	groups     *prometheus.GaugeVec
	rows       *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,

		operations: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmf_operations_total",
				Help: "Total number of operations performed",
			},
			[]string{"op", "schema", "result"},
		),

		duration: auto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cmf_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"op", "schema"},
		),

		groups: auto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cmf_document_groups",
				Help: "Number of key groups held by a document",
			},
			[]string{"schema", "document"},
		),

		rows: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmf_rows_total",
				Help: "Total number of data rows read or written",
			},
			[]string{"schema", "direction"},
		),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// Observe records one op on schema that began at start and ended with err.
func (m *Metrics) Observe(op, schema string, start time.Time, err error) {
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "error"
	}

	m.operations.WithLabelValues(op, schema, result).Inc()
	m.duration.WithLabelValues(op, schema).Observe(time.Since(start).Seconds())
}

// Groups sets the number of key groups held by document.
func (m *Metrics) Groups(schema, document string, n int) {
	if m == nil {
		return
	}

	m.groups.WithLabelValues(schema, document).Set(float64(n))
}

// Rows adds n data rows moving in direction ("in" or "out").
func (m *Metrics) Rows(schema, direction string, n int) {
	if m == nil || n <= 0 {
		return
	}

	m.rows.WithLabelValues(schema, direction).Add(float64(n))
}

// WriteFile atomically writes all gathered metrics to path.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}

	return prometheus.WriteToTextfile(path, m.registry)
}
