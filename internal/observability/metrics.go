package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and query path.
type Metrics struct {
	RecordsFetched          *prometheus.CounterVec // labels: resource
	FetchErrors             *prometheus.CounterVec // labels: resource
	FetchPageDuration       prometheus.Histogram
	RecordsNormalized       prometheus.Counter
	NormalizationRejections prometheus.Counter
	SnapshotsWritten        prometheus.Counter
	SnapshotWriteErrors     prometheus.Counter
	SnapshotsDeleted        prometheus.Counter
	PipelineRuns            prometheus.Counter
	PipelineRunning         prometheus.Gauge
	PipelineRunDuration     prometheus.Histogram
	QueryRequests           *prometheus.CounterVec // labels: outcome={ok,not_ready,no_match,error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "records_fetched_total",
			Help:      "Raw records fetched per upstream resource.",
		}, []string{"resource"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "fetch_errors_total",
			Help:      "Page fetch failures per upstream resource.",
		}, []string{"resource"}),
		FetchPageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agri_market",
			Name:      "fetch_page_duration_seconds",
			Help:      "Duration of one upstream page request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		RecordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "records_normalized_total",
			Help:      "Raw records successfully normalized.",
		}),
		NormalizationRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "normalization_rejections_total",
			Help:      "Raw records dropped for lacking a usable price.",
		}),
		SnapshotsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "snapshots_written_total",
			Help:      "Daily snapshot files written.",
		}),
		SnapshotWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "snapshot_write_errors_total",
			Help:      "Daily snapshot writes that failed.",
		}),
		SnapshotsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "snapshots_deleted_total",
			Help:      "Snapshot files removed by retention cleanup.",
		}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "pipeline_runs_total",
			Help:      "Completed ingestion pipeline runs.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agri_market",
			Name:      "pipeline_running",
			Help:      "1 while an ingestion run is in progress.",
		}),
		PipelineRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agri_market",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a complete ingestion run across the window.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agri_market",
			Name:      "query_requests_total",
			Help:      "Market data queries by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.FetchErrors,
		m.FetchPageDuration,
		m.RecordsNormalized,
		m.NormalizationRejections,
		m.SnapshotsWritten,
		m.SnapshotWriteErrors,
		m.SnapshotsDeleted,
		m.PipelineRuns,
		m.PipelineRunning,
		m.PipelineRunDuration,
		m.QueryRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agri_market", Name: "records_fetched_total"}, []string{"resource"}),
		FetchErrors:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agri_market", Name: "fetch_errors_total"}, []string{"resource"}),
		FetchPageDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "agri_market", Name: "fetch_page_duration_seconds"}),
		RecordsNormalized:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "records_normalized_total"}),
		NormalizationRejections: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "normalization_rejections_total"}),
		SnapshotsWritten:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "snapshots_written_total"}),
		SnapshotWriteErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "snapshot_write_errors_total"}),
		SnapshotsDeleted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "snapshots_deleted_total"}),
		PipelineRuns:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agri_market", Name: "pipeline_runs_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "agri_market", Name: "pipeline_running"}),
		PipelineRunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "agri_market", Name: "pipeline_run_duration_seconds"}),
		QueryRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agri_market", Name: "query_requests_total"}, []string{"outcome"}),
	}
}
