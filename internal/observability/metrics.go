package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ask outcomes recorded by AskRequests.
const (
	OutcomeAnswered = "answered"
	OutcomeFallback = "fallback"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

var (
	AskRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loanmatch_ask_requests_total",
		Help: "Grounded product questions by outcome.",
	}, []string{"outcome"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loanmatch_generation_duration_seconds",
		Help:    "Latency of generation collaborator calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})

	CatalogCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loanmatch_catalog_cache_total",
		Help: "Catalog cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)
