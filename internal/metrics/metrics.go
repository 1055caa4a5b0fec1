// Package metrics defines the Prometheus collectors for the tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// RelayActiveSubscribers tracks the number of live push streams.
	RelayActiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_subscribers",
			Help: "Number of currently subscribed push streams",
		},
	)

	// RelayEventsPublishedTotal counts published events by kind.
	RelayEventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_published_total",
			Help: "Total events published by kind",
		},
		[]string{"kind"},
	)

	// RelayDroppedSubscribersTotal counts subscribers evicted because their
	// event queue was full.
	RelayDroppedSubscribersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_dropped_subscribers_total",
			Help: "Total subscribers dropped for not keeping up with delivery",
		},
	)
)

// Contest lookup metrics
var (
	// LookupDuration tracks upstream entry search latency in seconds.
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contest_lookup_duration_seconds",
			Help:    "Upstream entry search duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// LookupsTotal counts entry searches by outcome (found, fallback, not_found, error).
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_lookups_total",
			Help: "Total entry searches by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamBreakerState tracks the contest API circuit breaker state
	// (0=closed, 1=half-open, 2=open).
	UpstreamBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contest_breaker_state",
			Help: "Contest API circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
