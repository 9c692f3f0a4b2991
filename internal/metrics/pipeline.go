package metrics

import "github.com/prometheus/client_golang/prometheus"

// RAG pipeline Prometheus metrics.
var (
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealmentor",
			Name:      "rag_stage_duration_seconds",
			Help:      "Duration of each RAG pipeline stage in seconds",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"}, // retrieve, prompt, generate, evaluate
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "rag_runs_total",
			Help:      "Total RAG pipeline runs by outcome",
		},
		[]string{"status"}, // "done" or the failing stage
	)

	RelevanceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "relevance_verdicts_total",
			Help:      "Relevance verdicts produced by the evaluator",
		},
		[]string{"label"},
	)

	CostUSDTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "cost_usd_total",
			Help:      "Accumulated LLM cost in USD",
		},
		[]string{"model"},
	)

	CostUnknownModelTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealmentor",
			Name:      "cost_unknown_model_total",
			Help:      "Cost computations for models without a price entry",
		},
		[]string{"model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(RelevanceTotal)
	prometheus.MustRegister(CostUSDTotal)
	prometheus.MustRegister(CostUnknownModelTotal)
	pipelineMetricsRegistered = true
}
