// Package service defines the interfaces of the external collaborators a
// standards run depends on.
package service

// TokenCounter measures text in model tokens. Implementations must be
// deterministic and free of side effects.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

// CountTokens calls f(text).
func (f TokenCounterFunc) CountTokens(text string) int { return f(text) }
