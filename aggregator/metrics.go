package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// --- Metrics ---

// Metrics holds all the Prometheus metrics for the aggregator.
type Metrics struct {
	searchDuration      *prometheus.HistogramVec
	candidatesEvaluated *prometheus.CounterVec
	swapsTotal          *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics for the aggregator.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aggregator_search_duration_seconds",
			Help:    "Time taken to find the best path for one request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		candidatesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_candidates_evaluated_total",
			Help: "Total number of complete candidate paths priced during searches.",
		}, []string{"mode"}),
		swapsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_swaps_total",
			Help: "Total number of swap requests, labeled by mode and result.",
		}, []string{"mode", "result"}),
	}
	reg.MustRegister(m.searchDuration, m.candidatesEvaluated, m.swapsTotal)
	return m
}

const (
	resultSuccess  = "success"
	resultInvalid  = "invalid_request"
	resultNoPath   = "no_path"
	resultSlippage = "slippage"
	resultFailed   = "execution_failed"
)
