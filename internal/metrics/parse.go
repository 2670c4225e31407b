package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query understanding Prometheus metrics.
var (
	ParseRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentiq",
			Name:      "parse_requests_total",
			Help:      "Total number of parsed queries",
		},
		[]string{"classification"},
	)

	FallbackRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentiq",
			Name:      "fallback_requests_total",
			Help:      "Total number of LLM fallback extractions",
		},
		[]string{"status"}, // "success" / "error"
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentiq",
			Name:      "schema_cache_total",
			Help:      "Schema cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PlanSynthesisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentiq",
			Name:      "plan_synthesis_total",
			Help:      "Total number of synthesized query plans",
		},
		[]string{"operation", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contentiq",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query handling duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"classification", "operation"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(ParseRequestsTotal)
	prometheus.MustRegister(FallbackRequestsTotal)
	prometheus.MustRegister(SchemaCacheTotal)
	prometheus.MustRegister(PlanSynthesisTotal)
	prometheus.MustRegister(QueryDuration)
	queryMetricsRegistered = true
}
