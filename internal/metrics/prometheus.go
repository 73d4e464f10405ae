// Package metrics exposes Prometheus instrumentation for the shipyard API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Recorder owns the HTTP and catalog metrics registered on a private registry.
type Recorder struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	catalogMutations    *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace:        "shipyard",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	r.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   r.histogramBuckets,
	}, []string{"route", "method"})

	r.catalogMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      "catalog_mutations_total",
		Help:      "Ship create, update and delete attempts by outcome.",
	}, []string{"operation", "outcome"})

	r.registry.MustRegister(r.httpRequests, r.httpRequestDuration, r.catalogMutations)
	return r
}

// Middleware records request counts and latency for every routed request.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		r.httpRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		r.httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordCatalogMutation counts a create/update/delete attempt.
func (r *Recorder) RecordCatalogMutation(operation, outcome string) {
	if r == nil {
		return
	}
	r.catalogMutations.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
