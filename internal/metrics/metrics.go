// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ring_active_connections",
		Help: "Number of live websocket connections.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ring_events_total",
		Help: "Inbound signaling events by type.",
	}, []string{"type"})

	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ring_calls_total",
		Help: "Call outcomes: initiated, accepted, rejected, ended, busy, offline.",
	}, []string{"outcome"})

	SignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ring_signals_relayed_total",
		Help: "Opaque negotiation payloads relayed between peers.",
	})

	MessagesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ring_messages_saved_total",
		Help: "Fallback messages handed to the store.",
	}, []string{"status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ring_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	}, []string{"method", "route", "status_code"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request durations per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
