package utils

// Token estimates use a fixed 4 characters per token. They only drive
// context-window warnings, never truncation of what is sent.

// CountTokens estimates the number of tokens in the given text.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TokenBreakdown maps labeled prompt sections to their estimated token counts.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = CountTokens(v)
	}
	return out
}

// ExceedsWindow reports whether prompt plus reserved completion tokens would
// overflow a context window. Unknown windows (<= 0) never overflow.
func ExceedsWindow(promptTokens, completionTokens, window int) bool {
	if window <= 0 {
		return false
	}
	return promptTokens+completionTokens > window
}
