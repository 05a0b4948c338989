// Package metrics records per-run counters for the sq commands and exports them
// in the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/sq/pkg/pipeline"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors for one process
type Metrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	lastRunTime  *prometheus.GaugeVec
	recordsTotal *prometheus.CounterVec
	skippedTotal *prometheus.CounterVec
	dupesTotal   *prometheus.CounterVec
	matchesTotal *prometheus.CounterVec
	spansTotal   *prometheus.CounterVec
	writtenTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_runs_total",
				Help: "Total number of command runs",
			},
			[]string{"command", "status"},
		),

		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sq_run_duration_seconds",
				Help:    "Command run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		lastRunTime: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sq_last_run_timestamp_seconds",
				Help: "Unix time the command last finished",
			},
			[]string{"command"},
		),

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_records_total",
				Help: "Total number of records or lines processed",
			},
			[]string{"command"},
		),

		skippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_malformed_lines_skipped_total",
				Help: "Total number of malformed lines dropped",
			},
			[]string{"command"},
		),

		dupesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_duplicate_lines_total",
				Help: "Total number of lines dropped by import dedupe",
			},
			[]string{"command"},
		),

		matchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_matches_printed_total",
				Help: "Total number of matches printed",
			},
			[]string{"command"},
		),

		spansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_spans_added_total",
				Help: "Total number of spans added by mark",
			},
			[]string{"command"},
		),

		writtenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sq_lines_written_total",
				Help: "Total number of output lines written",
			},
			[]string{"command"},
		),
	}
}

// RecordRun records the outcome of one command run
func (m *Metrics) RecordRun(command string, stats pipeline.Stats, runErr error, duration time.Duration) {
	status := statusSuccess
	if runErr != nil {
		status = statusError
	}

	m.runsTotal.WithLabelValues(command, status).Inc()
	m.runDuration.WithLabelValues(command).Observe(duration.Seconds())
	m.lastRunTime.WithLabelValues(command).SetToCurrentTime()

	m.recordsTotal.WithLabelValues(command).Add(float64(stats.Records))
	m.skippedTotal.WithLabelValues(command).Add(float64(stats.Skipped))
	m.dupesTotal.WithLabelValues(command).Add(float64(stats.Duplicates))
	m.matchesTotal.WithLabelValues(command).Add(float64(stats.Matches))
	m.spansTotal.WithLabelValues(command).Add(float64(stats.SpansAdded))
	m.writtenTotal.WithLabelValues(command).Add(float64(stats.Written))
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every collected metric to path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
