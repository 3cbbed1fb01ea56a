package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "corpanalyst"

// Connector lookup outcomes.
const (
	OutcomeCacheFresh  = "cache_fresh"
	OutcomeStaleServed = "cache_stale_served"
	OutcomeRefreshed   = "refreshed"
	OutcomeAbsent      = "absent"
	OutcomeError       = "error"
)

var (
	ConnectorLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connector_lookups_total",
		Help:      "Connector lookups by connector and outcome",
	}, []string{"connector", "outcome"})

	RemoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Outbound provider requests by provider, operation and status",
	}, []string{"provider", "operation", "status"})

	RemoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Outbound provider request latency",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "operation"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Bearer token requests by provider and status",
	}, []string{"provider", "status"})

	CacheRowsSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_rows_swept_total",
		Help:      "Cache rows deleted by the retention sweep",
	}, []string{"table"})
)

func RecordLookup(connector, outcome string) {
	ConnectorLookups.WithLabelValues(connector, outcome).Inc()
}

func ObserveRemote(provider, operation, status string, seconds float64) {
	RemoteRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	RemoteRequestDuration.WithLabelValues(provider, operation).Observe(seconds)
}
