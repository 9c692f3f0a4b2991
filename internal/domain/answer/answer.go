package answer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Record is the full outcome of one question through the pipeline.
type Record struct {
	Answer       string
	Model        string
	ResponseTime time.Duration
	Relevance    relevance.Verdict
	Usage        usage.TokenUsage
	EvalUsage    usage.TokenUsage
	Cost         decimal.Decimal
}
