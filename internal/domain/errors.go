package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion signals a blank question after trimming.
	ErrEmptyQuestion = errors.New("no question provided")
	// ErrQuestionTooLong signals a question over the search length limit.
	ErrQuestionTooLong = errors.New("question too long")
	// ErrInvalidFeedback signals a missing conversation id or a feedback value outside {1, -1}.
	ErrInvalidFeedback = errors.New("invalid input")
	// ErrFormatting signals a document missing a field referenced by a template.
	ErrFormatting = errors.New("formatting error")
	// ErrLLMProviderError signals a failed LLM call (transport, auth, quota, timeout).
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrEmptyCompletion signals a provider response without any completion text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrRetrieval signals a failed index search.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// FormattingError wraps ErrFormatting with the name of the missing field.
type FormattingError struct {
	Field string
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("%s: missing field %q", ErrFormatting.Error(), e.Field)
}

func (e *FormattingError) Unwrap() error { return ErrFormatting }

// NewFormattingError creates a formatting error for the given field.
func NewFormattingError(field string) error {
	return &FormattingError{Field: field}
}
