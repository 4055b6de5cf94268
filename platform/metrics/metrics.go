// Package metrics provides Prometheus instrumentation for the HTTP layer
// and a handful of domain counters.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "educare"

// Collector owns a private registry and the application's metrics.
type Collector struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	mediaViews      prometheus.Counter
	uploadCleanups  *prometheus.CounterVec
	insightsLookups *prometheus.CounterVec
}

// New creates a collector registered against a fresh registry, including
// the Go runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		mediaViews: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_views_total",
				Help:      "Total number of media resource views",
			},
		),
		uploadCleanups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_cleanups_total",
				Help:      "Orphaned upload cleanups by outcome",
			},
			[]string{"outcome"},
		),
		insightsLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_cache_lookups_total",
				Help:      "Insights cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Middleware records request count and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		c.requestTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// MediaViewed counts a media resource view.
func (c *Collector) MediaViewed() {
	c.mediaViews.Inc()
}

// UploadCleanup counts an orphaned-upload cleanup; outcome is one of
// "deleted", "deferred" or "failed".
func (c *Collector) UploadCleanup(outcome string) {
	c.uploadCleanups.WithLabelValues(outcome).Inc()
}

// InsightsLookup counts an insights cache lookup as "hit" or "miss".
func (c *Collector) InsightsLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.insightsLookups.WithLabelValues(result).Inc()
}
