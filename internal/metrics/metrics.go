// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of one AI pipeline call.
const (
	OutcomeOK          = "ok"
	OutcomeModelError  = "model_error"
	OutcomeSystemError = "system_error"
)

var (
	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menuwise_ai_request_duration_seconds",
			Help:    "Duration of calls to the chat-completions endpoint",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
		[]string{"stage"},
	)

	AIPipelineResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menuwise_ai_pipeline_results_total",
			Help: "Menu extraction and classification results by outcome",
		},
		[]string{"stage", "outcome"},
	)

	AIBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "menuwise_ai_breaker_state",
			Help: "Circuit breaker state of the AI client (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	Reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menuwise_preference_reconciliations_total",
			Help: "Preference category reconciliations",
		},
		[]string{"category"},
	)

	SkippedFlavorEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menuwise_flavor_entries_skipped_total",
			Help: "Flavor preferences dropped during bulk reconciliation for being out of range",
		},
	)

	DishRatings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menuwise_dish_ratings_total",
			Help: "Dish ratings saved",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menuwise_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"prefix"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menuwise_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menuwise_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
