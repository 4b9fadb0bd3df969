package prometheus

import (
	"garage-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter       prometheus.Counter
	AuthErrorsCounter  prometheus.CounterVec
	RegisteredCounter  prometheus.Counter

	// Work order metrics
	OrderOperationsCounter prometheus.CounterVec

	// Inventory metrics
	PartsConsumedCounter prometheus.CounterVec
	PartStockGauge       prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	RegisteredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_registrations_total",
			Help: "Total number of registered users",
		},
	)

	// Work order metrics
	OrderOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_operations_total",
			Help: "Total number of work order operations",
		},
		[]string{"operation"},
	)

	// Inventory metrics
	PartsConsumedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_parts_consumed_total",
			Help: "Total quantity of parts consumed by work orders",
		},
		[]string{"part_number"},
	)

	PartStockGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_part_stock",
			Help: "Current on-hand stock per part",
		},
		[]string{"part_number"},
	)
}

// RecordAuthError increments the auth error counter with a reason label
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}
