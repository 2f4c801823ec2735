// Package observability holds the Prometheus metrics of the pipeline and the
// query service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Registry owns these metrics; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	rows         *prometheus.CounterVec
	files        *prometheus.CounterVec
	repoDuration *prometheus.HistogramVec
	repoErrors   *prometheus.CounterVec
	requests     *prometheus.CounterVec
	exports      *prometheus.CounterVec
}

// NewMetrics registers everything on a private registry so it can be created
// more than once (tests, several binaries in one process).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoices_rows_total",
				Help: "Raw rows seen by batch cleaning, by variant and outcome.",
			},
			[]string{"variant", "outcome"},
		),
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoices_files_total",
				Help: "Source files processed, by status.",
			},
			[]string{"status"},
		),
		repoDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invoices_repository_duration_seconds",
				Help:    "Duration of repository calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		repoErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoices_repository_errors_total",
				Help: "Repository calls that failed after retries.",
			},
			[]string{"operation"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoices_requests_total",
				Help: "Query service requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoices_exports_total",
				Help: "Files written by export sinks, by kind.",
			},
			[]string{"kind"},
		),
	}
}

// ObserveBatch records the row outcomes of one cleaned file.
func (m *Metrics) ObserveBatch(r entity.BatchReport) {
	if m == nil {
		return
	}
	v := string(r.Variant)
	m.rows.WithLabelValues(v, "read").Add(float64(r.RowsRead))
	m.rows.WithLabelValues(v, "written").Add(float64(r.RowsWritten))
	m.rows.WithLabelValues(v, "full_row_duplicate").Add(float64(r.FullRowDuplicates))
	m.rows.WithLabelValues(v, "identity_collision").Add(float64(r.IdentityCollisions))
	m.rows.WithLabelValues(v, "schema_mismatch").Add(float64(r.SchemaMismatches))
	m.rows.WithLabelValues(v, "invalid_value").Add(float64(r.InvalidValues))
}

// IncrFile counts a processed source file.
func (m *Metrics) IncrFile(status string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
}

// RecordRepoCall records the duration of a repository call and whether it
// finally failed.
func (m *Metrics) RecordRepoCall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.repoDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.repoErrors.WithLabelValues(operation).Inc()
	}
}

// IncrRequest counts a query service request.
func (m *Metrics) IncrRequest(method, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
}

// IncrExport counts a written export file.
func (m *Metrics) IncrExport(kind string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
