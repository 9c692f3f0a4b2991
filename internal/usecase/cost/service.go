// Package cost prices token usage per model.
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
	"github.com/kailas-cloud/mealmentor/internal/metrics"
)

// Price is the USD rate per 1000 tokens.
type Price struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

var thousand = decimal.NewFromInt(1000)

// DefaultPrices returns the built-in price table.
func DefaultPrices() map[string]Price {
	return map[string]Price{
		"gpt-4o-mini": {
			InputPer1K:  decimal.RequireFromString("0.00015"),
			OutputPer1K: decimal.RequireFromString("0.0006"),
		},
		"gpt-4o": {
			InputPer1K:  decimal.RequireFromString("0.0025"),
			OutputPer1K: decimal.RequireFromString("0.01"),
		},
	}
}

// Service computes request cost. The table is read-only after New.
type Service struct {
	prices map[string]Price
	logger *zap.Logger
}

// New creates a cost accountant from the built-in table overlaid with extra.
func New(extra map[string]Price, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	prices := DefaultPrices()
	for model, p := range extra {
		if p.InputPer1K.IsNegative() || p.OutputPer1K.IsNegative() {
			return nil, fmt.Errorf("price for %q must be non-negative", model)
		}
		prices[model] = p
	}
	return &Service{prices: prices, logger: logger}, nil
}

// Known reports whether model has a price entry.
func (s *Service) Known(model string) bool {
	_, ok := s.prices[model]
	return ok
}

// Cost returns (prompt*in + completion*out) / 1000 in USD.
// An unknown model costs zero and is logged as a warning.
func (s *Service) Cost(model string, u usage.TokenUsage) decimal.Decimal {
	p, ok := s.prices[model]
	if !ok {
		s.logger.Warn("unknown model, cost set to zero", zap.String("model", model))
		metrics.CostUnknownModelTotal.WithLabelValues(model).Inc()
		return decimal.Zero
	}
	in := decimal.NewFromInt(int64(u.PromptTokens)).Mul(p.InputPer1K)
	out := decimal.NewFromInt(int64(u.CompletionTokens)).Mul(p.OutputPer1K)
	c := in.Add(out).Div(thousand)
	f, _ := c.Float64()
	metrics.CostUSDTotal.WithLabelValues(model).Add(f)
	return c
}
