package metrics

import "github.com/prometheus/client_golang/prometheus"

// LLM completion Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealmentor",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "llm_errors_total",
			Help:      "Total LLM completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	LLMTokensEstimatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "llm_tokens_estimated_total",
			Help:      "Completions whose usage was estimated locally because the provider reported none",
		},
		[]string{"model"},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers Prometheus LLM metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(LLMTokensEstimatedTotal)
	llmMetricsRegistered = true
}
