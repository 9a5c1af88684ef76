package adminapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the client's request
// lifecycle and its cache, dedup and retry layers. It is safe for concurrent
// use and all recorders are nil-receiver tolerant.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	retriesTotal *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	deduplicationHits *prometheus.CounterVec
	dedupReclaims     prometheus.Counter

	credentialClears prometheus.Counter

	errorsTotal *prometheus.CounterVec

	registerer prometheus.Registerer
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_requests_total",
				Help: "Total number of API calls made",
			},
			[]string{"method", "status", "path"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adminapi_request_duration_seconds",
				Help:    "Duration of API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status", "path"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "path", "attempt"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"method", "path"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"method", "path"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adminapi_cache_size",
				Help: "Current number of entries in cache",
			},
			[]string{"name"},
		),
		deduplicationHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_deduplication_hits_total",
				Help: "Total number of calls coalesced into an in-flight call",
			},
			[]string{"method", "path"},
		),
		dedupReclaims: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "adminapi_deduplication_reclaims_total",
				Help: "Total number of stale in-flight records reclaimed by the sweep",
			},
		),
		credentialClears: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "adminapi_credential_clears_total",
				Help: "Total number of credential clears triggered by 401 responses",
			},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminapi_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method", "path"},
		),
		registerer: registry,
	}
}

// RecordRequest records call count and duration.
func (mc *MetricsCollector) RecordRequest(method, path string, status int, duration time.Duration) {
	if mc == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	mc.requestsTotal.WithLabelValues(method, statusStr, path).Inc()
	mc.requestDuration.WithLabelValues(method, statusStr, path).Observe(duration.Seconds())
}

// RecordRetry increments retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(method, path string, attempt int) {
	if mc == nil {
		return
	}
	mc.retriesTotal.WithLabelValues(method, path, strconv.Itoa(attempt)).Inc()
}

// RecordCacheHit increments cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(method, path string) {
	if mc == nil {
		return
	}
	mc.cacheHits.WithLabelValues(method, path).Inc()
}

// RecordCacheMiss increments cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(method, path string) {
	if mc == nil {
		return
	}
	mc.cacheMisses.WithLabelValues(method, path).Inc()
}

// RecordCacheSize sets cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(name string, size int) {
	if mc == nil {
		return
	}
	mc.cacheSize.WithLabelValues(name).Set(float64(size))
}

// RecordDeduplicationHit increments the coalesced-call counter.
func (mc *MetricsCollector) RecordDeduplicationHit(method, path string) {
	if mc == nil {
		return
	}
	mc.deduplicationHits.WithLabelValues(method, path).Inc()
}

// RecordDedupSweep increments the stale-record reclaim counter.
func (mc *MetricsCollector) RecordDedupSweep() {
	if mc == nil {
		return
	}
	mc.dedupReclaims.Inc()
}

// RecordCredentialClear increments the 401 credential-clear counter.
func (mc *MetricsCollector) RecordCredentialClear() {
	if mc == nil {
		return
	}
	mc.credentialClears.Inc()
}

// RecordError increments error counter by taxonomy type.
func (mc *MetricsCollector) RecordError(errorType, method, path string) {
	if mc == nil {
		return
	}
	mc.errorsTotal.WithLabelValues(errorType, method, path).Inc()
}

// Registerer exposes the registerer metrics were registered on.
func (mc *MetricsCollector) Registerer() prometheus.Registerer {
	return mc.registerer
}
