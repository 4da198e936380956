// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/domain/schedule"
)

const namespace = "complytrack"

// EngineMetrics records generation and cleanup outcomes.  It satisfies the
// generator's and the cleanup service's metrics contracts.
type EngineMetrics struct {
	registry *prometheus.Registry

	passDuration   *prometheus.HistogramVec
	passRecords    *prometheus.CounterVec
	passes         *prometheus.CounterVec
	upsertConflict *prometheus.CounterVec
	dedupDeleted   prometheus.Counter
}

// NewEngineMetrics builds the collector on a fresh registry so tests and
// multiple binaries never collide on the global default.
func NewEngineMetrics() *EngineMetrics {
	m := &EngineMetrics{registry: prometheus.NewRegistry()}

	m.passDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one generation pass.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"frequency"})

	m.passRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "records_total",
		Help:      "Work records handled by generation passes, by outcome.",
	}, []string{"frequency", "outcome"})

	m.passes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "passes_total",
		Help:      "Completed generation passes.",
	}, []string{"frequency"})

	m.upsertConflict = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "upsert_conflicts_total",
		Help:      "Upserts resolved as already existing.",
	}, []string{"frequency"})

	m.dedupDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cleanup",
		Name:      "duplicates_deleted_total",
		Help:      "Duplicate work records deleted by cleanup runs.",
	})

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
		m.passDuration,
		m.passRecords,
		m.passes,
		m.upsertConflict,
		m.dedupDeleted,
	)
	return m
}

// PassCompleted records the outcome counts and duration of one pass.
func (m *EngineMetrics) PassCompleted(freq schedule.Frequency, summary generation.PassSummary, elapsed time.Duration) {
	f := string(freq)
	m.passes.WithLabelValues(f).Inc()
	m.passDuration.WithLabelValues(f).Observe(elapsed.Seconds())
	m.passRecords.WithLabelValues(f, "created").Add(float64(summary.Created))
	m.passRecords.WithLabelValues(f, "existing").Add(float64(summary.Existing))
	m.passRecords.WithLabelValues(f, "skipped").Add(float64(summary.Skipped))
	m.passRecords.WithLabelValues(f, "failed").Add(float64(summary.Failed))
}

// UpsertConflict counts an upsert that lost to an existing row.
func (m *EngineMetrics) UpsertConflict(freq schedule.Frequency) {
	m.upsertConflict.WithLabelValues(string(freq)).Inc()
}

// DuplicatesDeleted counts rows removed by a destructive cleanup run.
func (m *EngineMetrics) DuplicatesDeleted(count int64) {
	m.dedupDeleted.Add(float64(count))
}

// Handler serves the scrape endpoint for this collector's registry.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
