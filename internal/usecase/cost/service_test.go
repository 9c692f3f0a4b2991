package cost

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/mealmentor/internal/domain/usage"
)

func mustNew(t *testing.T, extra map[string]Price) *Service {
	t.Helper()
	s, err := New(extra, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestCost_KnownModels(t *testing.T) {
	s := mustNew(t, nil)

	tests := []struct {
		model string
		u     usage.TokenUsage
		want  string
	}{
		{"gpt-4o-mini", usage.New(1000, 1000, 0), "0.00075"},
		{"gpt-4o-mini", usage.New(1200, 150, 0), "0.00027"},
		{"gpt-4o", usage.New(1000, 1000, 0), "0.0125"},
		{"gpt-4o", usage.New(0, 0, 0), "0"},
	}
	for _, tt := range tests {
		got := s.Cost(tt.model, tt.u)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Cost(%s, %+v) = %s, want %s", tt.model, tt.u, got, tt.want)
		}
	}
}

func TestCost_UnknownModelIsZero(t *testing.T) {
	s := mustNew(t, nil)

	got := s.Cost("llama3", usage.New(5000, 5000, 0))
	if !got.IsZero() {
		t.Errorf("cost = %s, want 0", got)
	}
	if s.Known("llama3") {
		t.Error("llama3 must not be known")
	}
}

func TestCost_Monotone(t *testing.T) {
	s := mustNew(t, nil)

	prev := decimal.Zero
	for p := 0; p <= 3000; p += 250 {
		for c := 0; c <= 3000; c += 500 {
			cur := s.Cost("gpt-4o", usage.New(p, c, 0))
			lower := s.Cost("gpt-4o", usage.New(p, max(c-500, 0), 0))
			if cur.LessThan(lower) {
				t.Fatalf("not monotone in completion tokens at p=%d c=%d", p, c)
			}
		}
		cur := s.Cost("gpt-4o", usage.New(p, 0, 0))
		if cur.LessThan(prev) {
			t.Fatalf("not monotone in prompt tokens at p=%d", p)
		}
		prev = cur
	}
}

func TestNew_ExtraPrices(t *testing.T) {
	s := mustNew(t, map[string]Price{
		"llama3": {InputPer1K: decimal.RequireFromString("0.001"), OutputPer1K: decimal.Zero},
	})

	got := s.Cost("llama3", usage.New(2000, 9999, 0))
	if !got.Equal(decimal.RequireFromString("0.002")) {
		t.Errorf("cost = %s, want 0.002", got)
	}
	if !s.Known("gpt-4o-mini") {
		t.Error("built-in prices must be kept")
	}
}

func TestNew_NegativePrice(t *testing.T) {
	_, err := New(map[string]Price{"x": {InputPer1K: decimal.NewFromInt(-1)}}, nil)
	if err == nil {
		t.Fatal("expected error for negative price")
	}
}
