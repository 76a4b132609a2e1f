package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware holds the per-registry HTTP metrics.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusMiddleware registers the HTTP request metrics on reg. One
// middleware per registry; a second registration on the same registry fails.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler returns the fiber middleware handler.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The scrape endpoint itself stays out of the numbers.
		if c.Path() == "/metrics" {
			return c.Next()
		}

		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			m.requestDuration.WithLabelValues(c.Method(), routePath(c)).Observe(v)
		}))

		err := c.Next()
		timer.ObserveDuration()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(
			c.Method(),
			routePath(c),
			strconv.Itoa(status),
		).Inc()

		return err
	}
}

// routePath prefers the registered pattern (/notes/:id) over the raw URL so
// label cardinality stays bounded.
func routePath(c *fiber.Ctx) string {
	if p := c.Route().Path; p != "" {
		return p
	}
	return c.Path()
}
