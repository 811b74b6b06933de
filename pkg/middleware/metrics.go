package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deviceorder/fulfillment-service/pkg/metrics"
)

// MetricsMiddleware creates middleware that records HTTP metrics
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid recursion
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath() // route pattern, not actual path

		if path == "" {
			path = c.Request.URL.Path
		}

		m.RecordHTTPRequest(method, path, status, duration)
	}
}

// MetricsEndpoint returns a handler for the /metrics endpoint
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// OrderMetrics provides helpers for recording order-related metrics
type OrderMetrics struct {
	metrics *metrics.Metrics
}

// NewOrderMetrics creates a new OrderMetrics helper
func NewOrderMetrics(m *metrics.Metrics) *OrderMetrics {
	return &OrderMetrics{metrics: m}
}

// RecordVerified records a verification outcome
func (o *OrderMetrics) RecordVerified(accepted bool) {
	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
	}
	o.metrics.RecordOrderVerified(outcome)
}

// RecordSubmitted records an accepted order submission
func (o *OrderMetrics) RecordSubmitted() {
	o.metrics.RecordOrderSubmitted()
}

// RecordRejected records a rejected submission by kind
func (o *OrderMetrics) RecordRejected(kind string) {
	o.metrics.RecordOrderRejected(kind)
}

// RecordStockConflict records a submission aborted by a concurrent stock change
func (o *OrderMetrics) RecordStockConflict() {
	o.metrics.RecordStockConflict()
}
