package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/recipe"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/filter"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
)

// Service runs weighted keyword retrieval over the recipe index.
type Service struct {
	index  Index
	boosts map[string]float64
	limit  int
	filter map[string]string
}

// Option customizes retrieval defaults.
type Option func(*Service)

// WithBoosts replaces the default per-field weights. Empty keeps the defaults.
func WithBoosts(b map[string]float64) Option {
	return func(s *Service) {
		if len(b) > 0 {
			s.boosts = b
		}
	}
}

// WithLimit replaces the default result count.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithFilter sets a keyword filter applied to every search.
func WithFilter(f map[string]string) Option {
	return func(s *Service) { s.filter = f }
}

// New creates a retrieval service with recipe boosts, limit 10 and no filter.
func New(idx Index, opts ...Option) *Service {
	s := &Service{index: idx, boosts: recipe.DefaultBoosts(), limit: query.DefaultLimit}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns at most limit documents for the question, best first.
// Nil boosts or a non-positive limit fall back to the service defaults.
func (s *Service) Search(
	ctx context.Context, question string, boosts map[string]float64, limit int,
) ([]document.Document, error) {
	if boosts == nil {
		boosts = s.boosts
	}
	if limit <= 0 {
		limit = s.limit
	}

	expr, err := filter.FromMap(s.filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	q, err := query.New(question, expr, boosts, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	docs, err := s.index.Search(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	if len(docs) > q.Limit() {
		docs = docs[:q.Limit()]
	}
	return docs, nil
}
