package evaluation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/relevance"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

const template = `You are an expert evaluator for a RAG system.
Your task is to analyze the relevance of the generated answer to the given question.
Based on the relevance of the generated answer, you will classify it
as "NON_RELEVANT", "PARTLY_RELEVANT", or "RELEVANT".

Here is the data for evaluation:

Question: %s
Generated Answer: %s

Please analyze the content and context of the generated answer in relation to the question
and provide your evaluation in parsable JSON without using code blocks:

{
  "Relevance": "NON_RELEVANT" | "PARTLY_RELEVANT" | "RELEVANT",
  "Explanation": "[Provide a brief explanation for your evaluation]"
}`

// Service grades answers with an LLM judge.
type Service struct {
	gen    JSONGenerator
	logger *zap.Logger
}

// New creates a relevance evaluator.
func New(gen JSONGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, logger: logger}
}

// Prompt renders the evaluation prompt.
func Prompt(question, answer string) string {
	return fmt.Sprintf(template, question, answer)
}

// Evaluate classifies the relevance of answer to question. It never fails the
// request: a failed evaluation call or output that is not a valid verdict yields
// relevance.UnknownVerdict and a nil error. A failed call reports zero usage.
func (s *Service) Evaluate(
	ctx context.Context, question, answer, model string,
) (relevance.Verdict, usage.TokenUsage, error) {
	raw, u, err := s.gen.GenerateJSON(ctx, Prompt(question, answer), model)
	switch {
	case errors.Is(err, domain.ErrEmptyCompletion):
		s.logger.Warn("empty evaluation output", zap.String("model", model))
		return s.record(relevance.UnknownVerdict()), u, nil
	case err != nil:
		s.logger.Warn("evaluation call failed", zap.String("model", model), zap.Error(err))
		return s.record(relevance.UnknownVerdict()), usage.TokenUsage{}, nil
	}

	v, err := relevance.Parse(raw)
	if err != nil {
		var pe *relevance.ParseError
		if errors.As(err, &pe) {
			s.logger.Warn("unparsable evaluation output",
				zap.String("model", model),
				zap.String("reason", pe.Reason),
				zap.String("raw", pe.Raw),
			)
		}
		return s.record(relevance.UnknownVerdict()), u, nil
	}
	return s.record(v), u, nil
}

func (s *Service) record(v relevance.Verdict) relevance.Verdict {
	metrics.RelevanceTotal.WithLabelValues(string(v.Label)).Inc()
	return v
}
