package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and the map query surface.
type Metrics struct {
	RecordsFetched  prometheus.Counter
	RecordsCreated  prometheus.Counter
	RecordsUpdated  prometheus.Counter
	RecordsRejected *prometheus.CounterVec // label: reason={MALFORMED_RECORD,OUT_OF_REGION,STORE_FAULT}

	IngestionRuns    *prometheus.CounterVec // label: outcome={success,skipped,failed}
	IngestionRunning prometheus.Gauge
	RunDuration      prometheus.Histogram

	SweepDeleted prometheus.Counter

	ClusterCells prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_fetched_total",
			Help:      "Total raw rows fetched from the FIRMS feed.",
		}),
		RecordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_created_total",
			Help:      "Total detections inserted by upsert.",
		}),
		RecordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_updated_total",
			Help:      "Total detections overwritten by upsert.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "records_rejected_total",
			Help:      "Per-record ingestion rejections by reason.",
		}, []string{"reason"}),
		IngestionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "ingestion_runs_total",
			Help:      "Ingestion run outcomes.",
		}, []string{"outcome"}),
		IngestionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_map",
			Name:      "ingestion_running",
			Help:      "1 while an ingestion run holds the lease, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "ingestion_run_duration_seconds",
			Help:      "Duration of a complete fetch-transform-upsert run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		SweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_map",
			Name:      "sweep_deleted_total",
			Help:      "Total terminal-state records removed by the retention sweeper.",
		}),
		ClusterCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_map",
			Name:      "cluster_cells",
			Help:      "Occupied cells emitted per clustering request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.RecordsCreated,
		m.RecordsUpdated,
		m.RecordsRejected,
		m.IngestionRuns,
		m.IngestionRunning,
		m.RunDuration,
		m.SweepDeleted,
		m.ClusterCells,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_map", Name: "records_fetched_total"}),
		RecordsCreated:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_map", Name: "records_created_total"}),
		RecordsUpdated:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_map", Name: "records_updated_total"}),
		RecordsRejected:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_map", Name: "records_rejected_total"}, []string{"reason"}),
		IngestionRuns:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_map", Name: "ingestion_runs_total"}, []string{"outcome"}),
		IngestionRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_map", Name: "ingestion_running"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_map", Name: "ingestion_run_duration_seconds"}),
		SweepDeleted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_map", Name: "sweep_deleted_total"}),
		ClusterCells:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_map", Name: "cluster_cells"}),
	}
}
