// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postmarket_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// VendorRequestDuration records outbound vendor API call latency.
	VendorRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postmarket_vendor_request_duration_seconds",
		Help:    "Latency of outbound vendor API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"vendor", "outcome"})

	// WebSocketConnections is the gauge of active notification connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "postmarket_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postmarket_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// NotificationsPublished counts notification publishes by result.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postmarket_notifications_published_total",
		Help: "Total notification publishes by result",
	}, []string{"result"})
)

// ObserveVendorRequest records one vendor call with its outcome.
func ObserveVendorRequest(vendor, outcome string, start time.Time) {
	VendorRequestDuration.WithLabelValues(vendor, outcome).Observe(time.Since(start).Seconds())
}
