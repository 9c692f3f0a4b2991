package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
)

type stubIndex struct{ n int }

func (s stubIndex) Search(context.Context, *query.Query) ([]document.Document, error) { return nil, nil }
func (s stubIndex) Len() int                                                         { return s.n }

type stubBuilder struct {
	calls int
	err   error
}

func (b *stubBuilder) Build(_ context.Context, docs []document.Document, _ Fields) (Index, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return stubIndex{n: len(docs)}, nil
}

func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		wantErr bool
	}{
		{"valid", Fields{Text: []string{"recipe_name", "fat(g)"}, Keyword: []string{"id"}}, false},
		{"no keyword", Fields{Text: []string{"recipe_name"}}, false},
		{"no text", Fields{Keyword: []string{"id"}}, true},
		{"blank", Fields{Text: []string{""}}, true},
		{"duplicate text", Fields{Text: []string{"a", "a"}}, true},
		{"text and keyword", Fields{Text: []string{"id"}, Keyword: []string{"id"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFieldConfig) {
				t.Errorf("expected ErrInvalidFieldConfig, got %v", err)
			}
		})
	}
}

func TestBuild_ValidatesBeforeBackend(t *testing.T) {
	b := &stubBuilder{}
	if _, err := Build(context.Background(), b, nil, Fields{}); !errors.Is(err, ErrInvalidFieldConfig) {
		t.Fatalf("expected ErrInvalidFieldConfig, got %v", err)
	}
	if b.calls != 0 {
		t.Error("backend must not be called on invalid config")
	}
}

func TestBuild_PropagatesBackendError(t *testing.T) {
	boom := errors.New("boom")
	b := &stubBuilder{err: boom}
	_, err := Build(context.Background(), b, nil, Fields{Text: []string{"recipe_name"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestBuild_Success(t *testing.T) {
	docs := []document.Document{document.New(map[string]string{"recipe_name": "a"})}
	idx, err := Build(context.Background(), &stubBuilder{}, docs, Fields{Text: []string{"recipe_name"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
}
