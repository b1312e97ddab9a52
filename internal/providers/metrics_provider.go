package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"aisd/internal/structures"
)

// Position outcomes reported through IncPositions.
const (
	PositionAccepted  = "accepted"
	PositionThrottled = "throttled"
	PositionDuplicate = "duplicate"
	PositionFailed    = "failed"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncMessages(messageType string)
	IncMessageErrors(stage string)
	IncPositions(outcome string)
	IncReconnects()
	SetStreamConnected(connected bool)
	ObserveStoreWriteDuration(duration time.Duration)
	SetRecordsTotal(table string, count int64)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	messagesTotal      *prometheus.CounterVec
	messageErrorsTotal *prometheus.CounterVec
	positionsTotal     *prometheus.CounterVec
	reconnectsTotal    prometheus.Counter
	streamConnected    prometheus.Gauge
	storeWriteDuration prometheus.Histogram
	recordsTotal       *prometheus.GaugeVec
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

func (m *MetricsProvider) IncMessages(messageType string) {
	m.messagesTotal.WithLabelValues(messageType).Inc()
}

func (m *MetricsProvider) IncMessageErrors(stage string) {
	m.messageErrorsTotal.WithLabelValues(stage).Inc()
}

func (m *MetricsProvider) IncPositions(outcome string) {
	m.positionsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncReconnects() {
	m.reconnectsTotal.Inc()
}

func (m *MetricsProvider) SetStreamConnected(connected bool) {
	if connected {
		m.streamConnected.Set(1)
		return
	}
	m.streamConnected.Set(0)
}

func (m *MetricsProvider) ObserveStoreWriteDuration(duration time.Duration) {
	m.storeWriteDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetRecordsTotal(table string, count int64) {
	m.recordsTotal.WithLabelValues(table).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
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
			Name: "aisd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aisd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aisd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aisd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		messagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aisd_stream_messages_total",
			Help: "Stream messages received by message type",
		}, []string{"type"}),

		messageErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aisd_stream_message_errors_total",
			Help: "Stream messages that could not be processed, by stage",
		}, []string{"stage"}),

		positionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aisd_positions_total",
			Help: "Position reports by ingestion outcome",
		}, []string{"outcome"}),

		reconnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aisd_stream_reconnects_total",
			Help: "Number of stream reconnect attempts",
		}),

		streamConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aisd_stream_connected",
			Help: "1 while the stream subscription is live",
		}),

		storeWriteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aisd_store_write_duration_seconds",
			Help:    "Duration of store write operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aisd_records_total",
			Help: "Stored rows per table",
		}, []string{"table"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncMessages(_ string)                             {}
func (n *noopMetrics) IncMessageErrors(_ string)                        {}
func (n *noopMetrics) IncPositions(_ string)                            {}
func (n *noopMetrics) IncReconnects()                                   {}
func (n *noopMetrics) SetStreamConnected(_ bool)                        {}
func (n *noopMetrics) ObserveStoreWriteDuration(_ time.Duration)        {}
func (n *noopMetrics) SetRecordsTotal(_ string, _ int64)                {}
