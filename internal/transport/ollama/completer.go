// Package ollama provides a domain.Completer backed by a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

const provider = "ollama"

var jsonFormat = json.RawMessage(`"json"`)

// Completer generates text with the Ollama generate endpoint, non-streaming.
type Completer struct {
	client *api.Client
	logger *zap.Logger
}

// NewCompleter creates an Ollama completer. An empty baseURL falls back to OLLAMA_HOST.
func NewCompleter(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Completer, error) {
	host := envconfig.Host()
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse ollama url %q: %w", baseURL, err)
		}
		host = u
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{client: api.NewClient(host, httpClient), logger: logger}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	stream := false
	genReq := api.GenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: &stream,
	}
	if req.JSON {
		genReq.Format = jsonFormat
	}

	var (
		text strings.Builder
		u    usage.TokenUsage
	)
	start := time.Now()

	err := c.client.Generate(ctx, &genReq, func(resp api.GenerateResponse) error {
		text.WriteString(resp.Response)
		if resp.Done {
			u = usage.New(resp.PromptEvalCount, resp.EvalCount, 0)
		}
		return nil
	})

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(provider, req.Model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(provider, req.Model, "api_error").Inc()
		return domain.Completion{}, parseAPIError(err)
	}

	metrics.LLMRequestsTotal.WithLabelValues(provider, req.Model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(provider, req.Model).Observe(duration.Seconds())
	if !u.IsZero() {
		metrics.LLMTokensTotal.WithLabelValues(provider, req.Model, "prompt").Add(float64(u.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(provider, req.Model, "completion").Add(float64(u.CompletionTokens))
	}

	c.logger.Debug("ollama generate",
		zap.String("model", req.Model),
		zap.Bool("json", req.JSON),
		zap.Duration("duration", duration),
	)

	return domain.Completion{Text: text.String(), Usage: u}, nil
}

// HealthCheck pings the Ollama server.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// parseAPIError wraps every failure with domain.ErrLLMProviderError.
func parseAPIError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("ollama API error %d: %s: %w",
			statusErr.StatusCode, statusErr.ErrorMessage, domain.ErrLLMProviderError)
	}
	return fmt.Errorf("ollama request failed: %v: %w", err, domain.ErrLLMProviderError)
}
