package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search, cache and language-model Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"cache", "status"}, // cache: "hit"/"miss"; status: "ok"/"error"
	)

	SearchEnhancerFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_enhancer_fallback_total",
			Help:      "Searches that fell back to the raw query after an enhancer failure",
		},
		[]string{"reason"}, // "timeout" / "error"
	)

	SearchBackgroundErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_background_errors_total",
			Help:      "Failed asynchronous cache writes and analytics events",
		},
		[]string{"task"}, // "cache_write" / "event"
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"kind", "result"}, // result: "hit" / "miss" / "error"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of language-model requests",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language-model request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"operation"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total language-model tokens consumed",
		},
		[]string{"operation", "type"}, // type: "prompt" / "completion"
	)
)

var registerOnce sync.Once

// Register registers the HTTP, search, cache and LLM metrics with the default
// registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			SearchRequestsTotal,
			SearchEnhancerFallbackTotal,
			SearchBackgroundErrorsTotal,
			CacheTotal,
			LLMRequestsTotal,
			LLMRequestDuration,
			LLMTokensTotal,
		)
	})
}
