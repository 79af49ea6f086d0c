package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "logistics_operation_duration_seconds",
		Help:    "Duration of timed engine and repository operations",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"op"})

	opErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_operation_errors_total",
		Help: "Timed operations that returned an error",
	}, []string{"op"})

	// PathCacheLookups counts path cache lookups by result (hit, miss).
	PathCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_path_cache_lookups_total",
		Help: "Path cache lookups by result",
	}, []string{"result"})

	// PathCacheInvalidations counts full path cache wipes.
	PathCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logistics_path_cache_invalidations_total",
		Help: "Full path cache invalidations",
	})

	// RouteQueryDuration tracks uncached shortest path computations.
	RouteQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logistics_route_query_duration_seconds",
		Help:    "Shortest path computation time on cache miss",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
	})

	// SpikeTransitions counts spike applications and rollbacks by type.
	SpikeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_spike_transitions_total",
		Help: "Spike events applied or rolled back",
	}, []string{"type", "transition"})

	// IsolationAlerts counts isolation alerts raised and resolved.
	IsolationAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_isolation_alerts_total",
		Help: "Isolation alerts by action",
	}, []string{"action"})
)
