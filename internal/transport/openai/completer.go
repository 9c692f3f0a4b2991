package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

// Completer is a chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	provider string
	logger   *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey   string
	BaseURL  string // empty = api.openai.com
	Provider string
	Logger   *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *Config) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:   openai.NewClientWithConfig(clientCfg),
		provider: provider,
		logger:   logger,
	}
}

// Complete implements domain.Completer with a single user message.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, req.Model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.provider, req.Model, "api_error").Inc()
		return domain.Completion{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, req.Model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.provider, req.Model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("no choices in completion response: %w", domain.ErrEmptyCompletion)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.provider, req.Model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.provider, req.Model).Observe(duration.Seconds())

	u := usage.New(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	if !u.IsZero() {
		metrics.LLMTokensTotal.WithLabelValues(c.provider, req.Model, "prompt").Add(float64(u.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(c.provider, req.Model, "completion").Add(float64(u.CompletionTokens))
	}

	c.logger.Debug("chat completion",
		zap.String("model", req.Model),
		zap.Bool("json", req.JSON),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Duration("duration", duration),
	)

	return domain.Completion{Text: resp.Choices[0].Message.Content, Usage: u}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrLLMProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrLLMProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion request timed out: %w", wrap)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (gateway error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
