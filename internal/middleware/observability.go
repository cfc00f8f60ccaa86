package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const RequestIDHeader = "X-Request-ID"

var (
	// Registry holds the application's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gamemarket",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamemarket",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamemarket",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// MetricsHandler exposes the registered collectors.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := routeOf(c)
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"path", routeOf(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		if actor := auth.CurrentActor(c); actor.Authenticated {
			fields = append(fields, "user_id", actor.ID)
		}

		log := util.Logger()
		switch {
		case status >= http.StatusInternalServerError:
			log.Errorw("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warnw("HTTP request", fields...)
		default:
			log.Infow("HTTP request", fields...)
		}
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
