package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Payment outcomes
const (
	OutcomeFree        = "free"
	OutcomeCreated     = "created"
	OutcomePaid        = "paid"
	OutcomeDuplicate   = "duplicate"
	OutcomeFailed      = "failed"
	OutcomeGatewayErr  = "gateway_error"
	OutcomeUnavailable = "unavailable"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	paymentsTotal    *prometheus.CounterVec
	enrollmentsTotal *prometheus.CounterVec

	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	eventsDroppedTotal *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursehub_payments_total",
				Help: "Purchase and confirmation attempts by outcome",
			},
			[]string{"outcome"},
		),

		enrollmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursehub_enrollments_total",
				Help: "Enrollment changes by action",
			},
			[]string{"action"},
		),

		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_prefix"},
		),

		cacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_prefix"},
		),

		eventsDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursehub_events_dropped_total",
				Help: "Background tasks dropped after retries or on a full queue",
			},
			[]string{"task"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPayment 记录支付结果
func (m *MetricsCollector) RecordPayment(outcome string) {
	m.paymentsTotal.WithLabelValues(outcome).Inc()
}

// RecordEnrollment action is "enrolled" or "cancelled"
func (m *MetricsCollector) RecordEnrollment(action string) {
	m.enrollmentsTotal.WithLabelValues(action).Inc()
}

// RecordCacheOperation 记录缓存命中
func (m *MetricsCollector) RecordCacheOperation(keyPrefix string, hit bool) {
	if hit {
		m.cacheHitsTotal.WithLabelValues(keyPrefix).Inc()
		return
	}
	m.cacheMissesTotal.WithLabelValues(keyPrefix).Inc()
}

// RecordDroppedTask 记录被丢弃的后台任务
func (m *MetricsCollector) RecordDroppedTask(task string) {
	m.eventsDroppedTotal.WithLabelValues(task).Inc()
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器，注册到默认 registry
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
