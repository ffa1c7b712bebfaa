// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by route template, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "volunteer_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route template and method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "volunteer_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// WorkflowOutcomes counts apply/cancel/decrement results by outcome code.
	WorkflowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "volunteer_workflow_outcomes_total",
		Help: "Slot workflow results by operation and outcome",
	}, []string{"operation", "outcome"})
)

// Workflow operation labels.
const (
	OpApply     = "apply"
	OpCancel    = "cancel"
	OpDecrement = "decrement"

	OutcomeOK = "ok"
)

// RecordWorkflow counts one workflow result. An empty outcome means success.
func RecordWorkflow(operation, outcome string) {
	if outcome == "" {
		outcome = OutcomeOK
	}
	WorkflowOutcomes.WithLabelValues(operation, outcome).Inc()
}

// Middleware records request count and latency. Unmatched routes share one label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
