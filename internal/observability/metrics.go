package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zarr_catalog"

// Metrics holds the Prometheus counters, histograms, and gauges for catalog builds.
type Metrics struct {
	AssetsCrawled     prometheus.Counter
	ParseFailures     prometheus.Counter
	DuplicatesDropped prometheus.Counter
	RecordsWritten    prometheus.Counter
	ManifestPatches   *prometheus.CounterVec // labels: outcome={success,error}
	BuildRunning      prometheus.Gauge
	BuildDuration     prometheus.Histogram
}

// NewMetrics creates and registers all build metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AssetsCrawled,
		m.ParseFailures,
		m.DuplicatesDropped,
		m.RecordsWritten,
		m.ManifestPatches,
		m.BuildRunning,
		m.BuildDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssetsCrawled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_crawled_total",
			Help:      "Metadata keys that matched the crawl patterns.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Keys that could not be parsed into a catalog row.",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Rows dropped because an identical row was already kept.",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Rows written to catalog tables.",
		}),
		ManifestPatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_patches_total",
			Help:      "catalog_file rewrites by outcome.",
		}, []string{"outcome"}),
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_running",
			Help:      "1 while a catalog build is in progress.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete crawl, parse, write, and patch cycle.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
	}
}
