package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

// Defaults for a completion call.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

// Service performs one synchronous completion per call. No retries.
type Service struct {
	completer domain.Completer
	counter   TokenCounter
	timeout   time.Duration
	model     string
	logger    *zap.Logger
}

// Option customizes the generator.
type Option func(*Service)

// WithTimeout sets the per-call deadline. Non-positive keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDefaultModel sets the model used when a call passes none.
func WithDefaultModel(m string) Option {
	return func(s *Service) {
		if m != "" {
			s.model = m
		}
	}
}

// WithTokenCounter enables local usage estimation for providers reporting zero usage.
func WithTokenCounter(c TokenCounter) Option {
	return func(s *Service) { s.counter = c }
}

// New creates a generator over the given completer.
func New(completer domain.Completer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		completer: completer,
		timeout:   DefaultTimeout,
		model:     DefaultModel,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Model returns the default model.
func (s *Service) Model() string { return s.model }

// Generate sends prompt to the model and returns the completion text with its usage.
func (s *Service) Generate(ctx context.Context, prompt, model string) (string, usage.TokenUsage, error) {
	return s.run(ctx, domain.CompletionRequest{Prompt: prompt, Model: model})
}

// GenerateJSON is Generate with the provider asked for a JSON object.
func (s *Service) GenerateJSON(ctx context.Context, prompt, model string) (string, usage.TokenUsage, error) {
	return s.run(ctx, domain.CompletionRequest{Prompt: prompt, Model: model, JSON: true})
}

func (s *Service) run(ctx context.Context, req domain.CompletionRequest) (string, usage.TokenUsage, error) {
	if req.Model == "" {
		req.Model = s.model
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.completer.Complete(callCtx, req)
	if err != nil {
		if errors.Is(err, domain.ErrLLMProviderError) {
			return "", usage.TokenUsage{}, fmt.Errorf("complete: %w", err)
		}
		return "", usage.TokenUsage{}, fmt.Errorf("complete: %w: %w", domain.ErrLLMProviderError, err)
	}

	u := c.Usage
	if u.IsZero() && s.counter != nil {
		u = usage.New(s.counter.Count(req.Prompt), s.counter.Count(c.Text), 0)
		metrics.LLMTokensEstimatedTotal.WithLabelValues(req.Model).Inc()
		s.logger.Debug("estimated token usage",
			zap.String("model", req.Model),
			zap.Int("prompt_tokens", u.PromptTokens),
			zap.Int("completion_tokens", u.CompletionTokens),
		)
	}
	return c.Text, u, nil
}
