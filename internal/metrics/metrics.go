// Package metrics counts what a load run did and exports it in the Prometheus
// text format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

const namespace = "pgetl"

// LoadMetrics records one run. Each instance owns its registry, so runs and
// tests never share series.
type LoadMetrics struct {
	registry     *prometheus.Registry
	files        *prometheus.CounterVec
	fileFailures *prometheus.CounterVec
	rows         *prometheus.CounterVec
	resolutions  *prometheus.CounterVec
	fileDuration *prometheus.HistogramVec
	lastRun      prometheus.Gauge
}

// New registers the run's collectors. runID is attached as a constant label.
func New(runID string) *LoadMetrics {
	constLabels := prometheus.Labels{"run_id": runID}

	m := &LoadMetrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "files_total",
			Help:        "Input files by pass and outcome.",
			ConstLabels: constLabels,
		}, []string{"pass", "outcome"}),
		fileFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "file_failures_total",
			Help:        "Input files that failed, by pass and stage.",
			ConstLabels: constLabels,
		}, []string{"pass", "stage"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_total",
			Help:        "Rows submitted to the store by table and outcome.",
			ConstLabels: constLabels,
		}, []string{"table", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "resolutions_total",
			Help:        "Catalog lookups for events by status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		fileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "file_duration_seconds",
			Help:        "Time to load one input file.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}, []string{"pass"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the run finished.",
			ConstLabels: constLabels,
		}),
	}

	m.registry.MustRegister(m.files, m.fileFailures, m.rows, m.resolutions, m.fileDuration, m.lastRun)
	return m
}

// Registry exposes the collectors, e.g. for testutil.
func (m *LoadMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *LoadMetrics) FileProcessed(pass string, elapsed time.Duration) {
	m.files.WithLabelValues(pass, "processed").Inc()
	m.fileDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
}

func (m *LoadMetrics) FileFailed(pass, stage string) {
	m.files.WithLabelValues(pass, "failed").Inc()
	m.fileFailures.WithLabelValues(pass, stage).Inc()
}

func (m *LoadMetrics) RowWritten(table pgetl.Table) {
	m.rows.WithLabelValues(table.String(), "written").Inc()
}

func (m *LoadMetrics) RowRejected(table pgetl.Table) {
	m.rows.WithLabelValues(table.String(), "rejected").Inc()
}

func (m *LoadMetrics) Resolution(status pgetl.ResolutionStatus) {
	m.resolutions.WithLabelValues(status.String()).Inc()
}

// Finish stamps the completion time.
func (m *LoadMetrics) Finish(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes every series to path.
func (m *LoadMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
