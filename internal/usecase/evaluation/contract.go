package evaluation

import (
	"context"

	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// JSONGenerator asks the model for a JSON object.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt, model string) (string, usage.TokenUsage, error)
}
