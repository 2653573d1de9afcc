// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	RateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	PanicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// op is create, update or delete.
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Committed recipe writes",
		},
		[]string{"op"},
	)

	ToggleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_toggle_transitions_total",
			Help: "Relation toggles by relation and outcome",
		},
		[]string{"relation", "transition"},
	)
)
