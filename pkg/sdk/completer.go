package mealmentor

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Completer produces text for a single-turn prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// CompletionRequest is one user prompt.
type CompletionRequest struct {
	Prompt string
	Model  string
	// JSON asks for a JSON object response; set for relevance evaluation.
	JSON bool
}

// Completion is the generated text and the provider-reported token counts.
// Zero counts are estimated locally.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// completerAdapter wraps a public Completer to satisfy domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	r, err := a.inner.Complete(ctx, CompletionRequest{Prompt: req.Prompt, Model: req.Model, JSON: req.JSON})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	return domain.Completion{
		Text:  r.Text,
		Usage: usage.New(r.PromptTokens, r.CompletionTokens, r.TotalTokens),
	}, nil
}

// HealthCheck forwards to the wrapped completer when it supports health checks.
func (a *completerAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
