package rag

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

// Retriever finds context documents for a question.
type Retriever interface {
	Search(ctx context.Context, question string, boosts map[string]float64, limit int) ([]document.Document, error)
}

// PromptBuilder renders the generation prompt.
type PromptBuilder interface {
	Build(question string, docs []document.Document) (string, error)
}

// Generator produces the answer.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, usage.TokenUsage, error)
}

// Evaluator grades the answer.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer, model string) (relevance.Verdict, usage.TokenUsage, error)
}

// Pricer prices token usage.
type Pricer interface {
	Cost(model string, u usage.TokenUsage) decimal.Decimal
}
