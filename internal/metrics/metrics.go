package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_events_total",
			Help: "Total number of change events handled, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	EventFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_event_failures_total",
			Help: "Total number of failed change events, by kind and error kind.",
		},
		[]string{"kind", "reason"},
	)

	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_gateway_requests_total",
			Help: "Total number of push gateway calls, by driver and result.",
		},
		[]string{"driver", "result"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_gateway_request_duration_seconds",
			Help:    "Latency of push gateway calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver"},
	)

	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_token_exchanges_total",
			Help: "Total number of access token exchanges, by result.",
		},
		[]string{"result"},
	)

	TokenCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_token_cache_lookups_total",
			Help: "Access token cache lookups, by result (hit, miss, error).",
		},
		[]string{"result"},
	)
)
