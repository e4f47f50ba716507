package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics holds the service collectors. Each instance owns its registry so
// servers built in tests do not collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	logger          *zap.Logger
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	verifications   *prometheus.CounterVec
}

// New registers the request and verification collectors.
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	m.requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spv",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spv",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)
	m.verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spv",
			Name:      "verifications_total",
			Help:      "Verification outcomes by kind",
		},
		[]string{"kind", "result"},
	)

	m.Registry.MustRegister(m.requestCounter, m.requestDuration, m.verifications)
	return m
}

// Middleware records count and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := c.Writer.Status()
		duration := time.Since(start)

		m.requestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

		m.logger.Debug("request metrics collected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}

// Verification counts one outcome of kind (merkle, header_chain, proof).
func (m *Metrics) Verification(kind string, ok bool) {
	result := "invalid"
	if ok {
		result = "valid"
	}
	m.verifications.WithLabelValues(kind, result).Inc()
}
