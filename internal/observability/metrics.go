package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast update cycle.
type Metrics struct {
	CyclesTotal   *prometheus.CounterVec // labels: outcome={published,degraded,fetch_error}
	ParseFailures *prometheus.CounterVec // labels: reason={missing,invalid}

	FetchDuration prometheus.Histogram
	CycleDuration prometheus.Histogram

	LastKIndex        *prometheus.GaugeVec // labels: offset
	SnapshotTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.ParseFailures,
		m.FetchDuration,
		m.CycleDuration,
		m.LastKIndex,
		m.SnapshotTimestamp,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kindex",
			Name:      "update_cycles_total",
			Help:      "Update cycles by outcome.",
		}, []string{"outcome"}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kindex",
			Name:      "parse_failures_total",
			Help:      "Per-day extraction failures by reason.",
		}, []string{"reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kindex",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the forecast widget HTTP fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kindex",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-parse-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LastKIndex: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kindex",
			Name:      "forecast_value",
			Help:      "Last published K-index value per day offset.",
		}, []string{"offset"}),
		SnapshotTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kindex",
			Name:      "snapshot_timestamp_seconds",
			Help:      "Unix time of the last published snapshot.",
		}),
	}
}
