package query

import (
	"fmt"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed question length in bytes.
	MaxTextLength = 4096
	DefaultLimit  = 10
	MaxLimit      = 100
)

// Query is a validated weighted keyword search.
type Query struct {
	text   string
	filter filter.Expression
	boosts map[string]float64
	limit  int
}

// New validates and normalizes search parameters.
// Limit defaults to 10 and is clamped to 100. Boosts are copied; a field without a
// boost weighs 1, a field boosted with 0 is not scored.
func New(text string, f filter.Expression, boosts map[string]float64, limit int) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("query is required")
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w (max %d bytes)", domain.ErrQuestionTooLong, MaxTextLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	b := make(map[string]float64, len(boosts))
	for field, w := range boosts {
		if w < 0 {
			return Query{}, fmt.Errorf("boost for %q must be non-negative", field)
		}
		b[field] = w
	}
	return Query{text: text, filter: f, boosts: b, limit: limit}, nil
}

// Text returns the query text.
func (q *Query) Text() string { return q.text }

// Filter returns the keyword filter expression.
func (q *Query) Filter() filter.Expression { return q.filter }

// Boost returns the weight of a field (1 when not set).
func (q *Query) Boost(field string) float64 {
	if w, ok := q.boosts[field]; ok {
		return w
	}
	return 1
}

// Limit returns the maximum number of results.
func (q *Query) Limit() int { return q.limit }
