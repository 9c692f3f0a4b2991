package retrieval

import (
	"context"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
	"github.com/kailas-cloud/mealmentor/internal/domain/search/query"
)

// Index is the built search index the retriever reads from.
type Index interface {
	Search(ctx context.Context, q *query.Query) ([]document.Document, error)
}
