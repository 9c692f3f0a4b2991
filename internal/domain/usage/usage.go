package usage

// TokenUsage is the token accounting of one LLM call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// New creates a TokenUsage. Negative counts are clamped to zero and a zero
// total is derived from prompt + completion.
func New(prompt, completion, total int) TokenUsage {
	prompt = max(prompt, 0)
	completion = max(completion, 0)
	total = max(total, 0)
	if total == 0 {
		total = prompt + completion
	}
	return TokenUsage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: total}
}

// IsZero reports whether the provider reported no usage at all.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Add returns the element-wise sum.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}
