package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipelines.
type Metrics struct {
	RowsIngested     *prometheus.CounterVec // labels: pipeline={field,weather}
	PipelineRuns     *prometheus.CounterVec // labels: pipeline, outcome={success,error}
	PipelineDuration *prometheus.HistogramVec
	PipelineRunning  prometheus.Gauge

	// Message extraction metrics.
	MeasurementsExtracted *prometheus.CounterVec // labels: kind
	ExtractionMisses      prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsIngested,
		m.PipelineRuns,
		m.PipelineDuration,
		m.PipelineRunning,
		m.MeasurementsExtracted,
		m.ExtractionMisses,
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
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_etl",
			Name:      "rows_ingested_total",
			Help:      "Total rows loaded from source datasets, by pipeline.",
		}, []string{"pipeline"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_etl",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "farm_etl",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"pipeline"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "farm_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		MeasurementsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_etl",
			Name:      "measurements_extracted_total",
			Help:      "Messages whose measurement was extracted, by measurement kind.",
		}, []string{"kind"}),
		ExtractionMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farm_etl",
			Name:      "extraction_misses_total",
			Help:      "Messages matching no configured measurement pattern.",
		}),
	}
}
