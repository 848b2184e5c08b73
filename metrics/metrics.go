package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for record operations.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeDenied   = "denied"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Registry owns the service's collectors. Each Registry is independent so
// tests can build as many as they like.
type Registry struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"method", "path", "status"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_operations_total",
			Help: "Record store operations by collection, operation and outcome",
		},
		[]string{"collection", "op", "outcome"},
	)
	reg.MustRegister(requests, duration, records)

	return &Registry{registry: reg, requests: requests, duration: duration, records: records}
}

func (r *Registry) Request(method, path string, status int, d time.Duration) {
	s := strconv.Itoa(status)
	r.requests.WithLabelValues(method, path, s).Inc()
	r.duration.WithLabelValues(method, path, s).Observe(d.Seconds())
}

// RecordOp counts one adapter call.
func (r *Registry) RecordOp(collection, op, outcome string) {
	r.records.WithLabelValues(collection, op, outcome).Inc()
}

// Middleware records every request under its route template, so
// /api/return-items/:id is one series rather than one per id.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.Request(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Gatherer exposes the registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }
