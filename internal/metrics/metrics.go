// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"rental-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// LookupMisses counts GetByID calls that ended in a not-found error.
	LookupMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_lookup_misses_total",
			Help: "Total number of entity lookups that found no record",
		},
		[]string{"entity"},
	)

	BookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Total number of bookings cancelled",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RequestCounter, RequestDurationHistogram, LookupMisses, BookingsCancelled)
	})
}

// Middleware records request count and latency per route.
func Middleware(serviceName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.HTTPStatus(err)
		}
		path := c.Route().Path
		statusStr := strconv.Itoa(status)

		RequestCounter.WithLabelValues(serviceName, c.Method(), path, statusStr).Inc()
		RequestDurationHistogram.WithLabelValues(serviceName, c.Method(), path, statusStr).Observe(time.Since(start).Seconds())

		return err
	}
}
