package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
	"translit/internal/structures"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncQueryFetches(key string, outcome string)
	IncMutations(name string, outcome string)
	IncToasts(kind string)
	SetRecordsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	queryFetches    *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	toasts          *prometheus.CounterVec
	recordsTotal    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncQueryFetches(key string, outcome string) {
	m.queryFetches.WithLabelValues(key, outcome).Inc()
}

func (m *MetricsProvider) IncMutations(name string, outcome string) {
	m.mutations.WithLabelValues(name, outcome).Inc()
}

func (m *MetricsProvider) IncToasts(kind string) {
	m.toasts.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetRecordsTotal(count int) {
	m.recordsTotal.Set(float64(count))
}

// httpStatusBucket maps transport failures (status 0) to "error".
func httpStatusBucket(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "translit_requests_total",
			Help: "Total number of HTTP requests issued to the conversion service",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "translit_request_duration_seconds",
			Help:    "Conversion service request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "translit_response_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "translit_response_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		queryFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "translit_query_fetches_total",
			Help: "Total number of settled query fetches",
		}, []string{"key", "outcome"}),

		mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "translit_mutations_total",
			Help: "Total number of settled mutations",
		}, []string{"name", "outcome"}),

		toasts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "translit_toasts_total",
			Help: "Total number of toasts shown",
		}, []string{"kind"}),

		recordsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "translit_history_records",
			Help: "Number of conversion records in the last successful list fetch",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncQueryFetches(_ string, _ string)               {}
func (n *noopMetrics) IncMutations(_ string, _ string)                  {}
func (n *noopMetrics) IncToasts(_ string)                               {}
func (n *noopMetrics) SetRecordsTotal(_ int)                            {}
