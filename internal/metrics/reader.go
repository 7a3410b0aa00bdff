package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reader (inference adapter) Prometheus metrics.
var (
	ReaderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerdex",
			Name:      "reader_requests_total",
			Help:      "Total number of reader inference requests",
		},
		[]string{"provider", "model", "status"},
	)

	ReaderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "answerdex",
			Name:      "reader_request_duration_seconds",
			Help:      "Reader inference request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	ReaderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerdex",
			Name:      "reader_errors_total",
			Help:      "Total reader inference errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	ReaderCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerdex",
			Name:      "reader_cache_total",
			Help:      "Reader prediction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var readerMetricsRegistered bool

// RegisterReaderMetrics registers Prometheus reader metrics. Must be called once from main.
func RegisterReaderMetrics() {
	if readerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ReaderRequestsTotal)
	prometheus.MustRegister(ReaderRequestDuration)
	prometheus.MustRegister(ReaderErrorsTotal)
	prometheus.MustRegister(ReaderCacheTotal)
	readerMetricsRegistered = true
}
