package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/mealmentor/internal/domain"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New("vegan lunch", filter.Expression{}, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "vegan lunch" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", q.Limit(), DefaultLimit)
	}
	if q.Boost("recipe_name") != 1 {
		t.Errorf("unset boost = %g, want 1", q.Boost("recipe_name"))
	}
	if !q.Filter().IsEmpty() {
		t.Error("expected empty filter")
	}
}

func TestNew_LimitClamped(t *testing.T) {
	q, err := New("x", filter.Expression{}, nil, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", q.Limit(), MaxLimit)
	}
}

func TestNew_Boosts(t *testing.T) {
	boosts := map[string]float64{"recipe_name": 3, "diet_type": 0}
	q, err := New("x", filter.Expression{}, boosts, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boosts["recipe_name"] = 9

	if q.Boost("recipe_name") != 3 {
		t.Errorf("boost must be copied, got %g", q.Boost("recipe_name"))
	}
	if q.Boost("diet_type") != 0 {
		t.Errorf("zero boost = %g, want 0", q.Boost("diet_type"))
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("", filter.Expression{}, nil, 0); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := New(strings.Repeat("a", MaxTextLength+1), filter.Expression{}, nil, 0); !errors.Is(err, domain.ErrQuestionTooLong) {
		t.Errorf("expected ErrQuestionTooLong for long query, got %v", err)
	}
	if _, err := New(strings.Repeat("a", MaxTextLength), filter.Expression{}, nil, 0); err != nil {
		t.Errorf("query at the limit must be accepted, got %v", err)
	}
	if _, err := New("x", filter.Expression{}, map[string]float64{"fat(g)": -1}, 0); err == nil {
		t.Error("expected error for negative boost")
	}
}
