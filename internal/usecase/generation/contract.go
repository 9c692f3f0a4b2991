package generation

// TokenCounter estimates token counts when the provider reports none.
type TokenCounter interface {
	Count(text string) int
}
