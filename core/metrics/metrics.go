package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nebula_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nebula_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Sync metrics
	SyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nebula_sync_total",
			Help: "Total number of discovery syncs by source and result",
		},
		[]string{"source", "result"},
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nebula_sync_duration_seconds",
			Help:    "Discovery sync duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	DiscoveredItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nebula_discovered_items",
			Help: "Number of items returned by the last successful discovery per source",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(SyncTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(DiscoveredItems)
}

// Timer measures the duration of an operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed seconds on the given observer.
func (t *Timer) ObserveDuration(o prometheus.Observer) {
	o.Observe(t.Duration().Seconds())
}

// RecordSync records the outcome of one discovery run.
func RecordSync(source string, timer *Timer, discovered int, err error) {
	timer.ObserveDuration(SyncDuration.WithLabelValues(source))
	if err != nil {
		SyncTotal.WithLabelValues(source, "failure").Inc()
		return
	}
	SyncTotal.WithLabelValues(source, "success").Inc()
	DiscoveredItems.WithLabelValues(source).Set(float64(discovered))
}

// Middleware counts requests and observes their latency.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		timer := NewTimer()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		APIRequestsTotal.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		timer.ObserveDuration(APIRequestDuration.WithLabelValues(c.Method()))
		return err
	}
}

// Handler returns the Prometheus scrape endpoint as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
