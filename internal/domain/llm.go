package domain

import (
	"context"

	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Completer is the shared text completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// HealthChecker verifies LLM provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionRequest is a single-turn user prompt.
type CompletionRequest struct {
	Prompt string
	Model  string
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Completion carries the generated text and the provider-reported usage.
type Completion struct {
	Text  string
	Usage usage.TokenUsage
}
