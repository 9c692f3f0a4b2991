package db

import "github.com/kailas-cloud/mealmentor/internal/domain/search/filter"

// TextQuery is the input for weighted full-text search.
// Only fields in FieldWeights with a positive weight are searched; keys are
// the fields' query names (aliases).
type TextQuery struct {
	IndexName    string
	Text         string
	FieldWeights map[string]float64
	Filters      filter.Expression
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
