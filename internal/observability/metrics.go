package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for dataset loading.
type Metrics struct {
	DatasetLoads       *prometheus.CounterVec   // labels: dataset, outcome={success,error}
	LoadDuration       *prometheus.HistogramVec // labels: dataset
	RecordsParsed      *prometheus.CounterVec   // labels: dataset
	CoordinateWarnings *prometheus.CounterVec   // labels: dataset
	CacheLookups       *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.LoadDuration,
		m.RecordsParsed,
		m.CoordinateWarnings,
		m.CacheLookups,
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
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_api",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crisis_api",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete read-parse-map cycle per dataset.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"dataset"}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_api",
			Name:      "records_parsed_total",
			Help:      "Total rows parsed into typed records per dataset.",
		}, []string{"dataset"}),
		CoordinateWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_api",
			Name:      "coordinate_warnings_total",
			Help:      "Records whose coordinates fell outside the region bounding box.",
		}, []string{"dataset"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_api",
			Name:      "cache_lookups_total",
			Help:      "Dataset response cache lookups by result.",
		}, []string{"result"}),
	}
}
