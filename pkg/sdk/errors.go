package mealmentor

import "github.com/kailas-cloud/mealmentor/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuestion    = domain.ErrEmptyQuestion
	ErrQuestionTooLong  = domain.ErrQuestionTooLong
	ErrInvalidFeedback  = domain.ErrInvalidFeedback
	ErrNotFound         = domain.ErrNotFound
	ErrFormatting       = domain.ErrFormatting
	ErrRetrieval        = domain.ErrRetrieval
	ErrLLMProviderError = domain.ErrLLMProviderError
	ErrEmptyCompletion  = domain.ErrEmptyCompletion
)
