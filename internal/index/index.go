// Package index defines the search index contract shared by the in-memory and
// Redis backends, and validates field configuration before building.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
)

// ErrInvalidFieldConfig signals unusable text/keyword field lists.
var ErrInvalidFieldConfig = errors.New("invalid index field configuration")

// Index is a built, read-only search structure safe for concurrent use.
type Index interface {
	Search(ctx context.Context, q *query.Query) ([]document.Document, error)
	Len() int
}

// Builder constructs an Index from a document collection in one shot.
type Builder interface {
	Build(ctx context.Context, docs []document.Document, fields Fields) (Index, error)
}

// Fields declares which document fields are full-text searchable and which
// are exact-match keyword fields.
type Fields struct {
	Text    []string
	Keyword []string
}

// Validate checks that there is at least one text field, that no name is blank
// or repeated, and that no field is declared both text and keyword.
func (f Fields) Validate() error {
	if len(f.Text) == 0 {
		return fmt.Errorf("%w: at least one text field is required", ErrInvalidFieldConfig)
	}
	seen := make(map[string]string, len(f.Text)+len(f.Keyword))
	check := func(kind string, names []string) error {
		for _, n := range names {
			if n == "" {
				return fmt.Errorf("%w: blank %s field name", ErrInvalidFieldConfig, kind)
			}
			if prev, ok := seen[n]; ok {
				return fmt.Errorf("%w: field %q declared as %s and %s", ErrInvalidFieldConfig, n, prev, kind)
			}
			seen[n] = kind
		}
		return nil
	}
	if err := check("text", f.Text); err != nil {
		return err
	}
	return check("keyword", f.Keyword)
}

// Build validates the field configuration and delegates to the backend.
func Build(ctx context.Context, b Builder, docs []document.Document, fields Fields) (Index, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	idx, err := b.Build(ctx, docs, fields)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return idx, nil
}
