package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Relay metrics
	MessagesBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainchat_messages_broadcast_total",
			Help: "Total messages appended and broadcast to a room",
		},
		[]string{"type"}, // "user" or "system"
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainchat_room_joins_total",
			Help: "Total room joins",
		},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainchat_active_connections",
			Help: "Currently connected websocket clients",
		},
	)

	// Enrichment metrics
	EnrichmentLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainchat_enrichment_lookups_total",
			Help: "Total transaction identifiers submitted for enrichment",
		},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainchat_enrichment_failures_total",
			Help: "Enrichment lookups dropped due to an error",
		},
		[]string{"reason"}, // "not_found", "timeout", "rpc_error", "lookup_error"
	)

	EnrichmentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainchat_enrichment_cache_hits_total",
			Help: "Enrichment results served from cache",
		},
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainchat_enrichment_duration_seconds",
			Help:    "Wall time of one full enrichment fan-out",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)
