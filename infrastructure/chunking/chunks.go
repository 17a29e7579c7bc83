// Package chunking splits text into segments that fit a token budget.
package chunking

import (
	"fmt"
	"strings"

	domainservice "github.com/redrover-dev/redrover/domain/service"
)

// Chunk is one whitespace-delimited run of words from the input, rejoined
// with single spaces.
type Chunk struct {
	content string
	tokens  int
	words   int
}

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// Tokens returns the sum of the isolated token counts of the chunk's words.
func (c Chunk) Tokens() int { return c.tokens }

// Words returns the number of words in the chunk.
func (c Chunk) Words() int { return c.words }

// Oversized reports whether the chunk is a single word whose own token count
// exceeds maxTokens. Such words are never split below word granularity.
func (c Chunk) Oversized(maxTokens int) bool {
	return c.words == 1 && c.tokens > maxTokens
}

// TokenChunks holds the result of splitting content by token budget.
type TokenChunks struct {
	chunks    []Chunk
	maxTokens int
}

// NewTokenChunks greedily packs the whitespace-separated words of content
// into chunks whose summed word token counts stay within maxTokens.
//
// Words are measured in isolation with counter. A word that would push the
// running total past maxTokens closes the current chunk and starts the next
// one. A single word larger than maxTokens becomes a chunk on its own.
// Original inter-word whitespace (newlines, indentation) is not preserved.
func NewTokenChunks(content string, maxTokens int, counter domainservice.TokenCounter) (TokenChunks, error) {
	if maxTokens <= 0 {
		return TokenChunks{}, fmt.Errorf("token budget must be positive, got %d", maxTokens)
	}
	if counter == nil {
		return TokenChunks{}, fmt.Errorf("nil token counter")
	}

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			content: strings.Join(current, " "),
			tokens:  currentTokens,
			words:   len(current),
		})
	}

	for _, word := range strings.Fields(content) {
		wordTokens := counter.CountTokens(word)

		if currentTokens+wordTokens <= maxTokens {
			current = append(current, word)
			currentTokens += wordTokens
			continue
		}

		flush()
		current = []string{word}
		currentTokens = wordTokens
	}
	flush()

	return TokenChunks{chunks: chunks, maxTokens: maxTokens}, nil
}

// All returns all chunks in input order.
func (t TokenChunks) All() []Chunk {
	result := make([]Chunk, len(t.chunks))
	copy(result, t.chunks)
	return result
}

// Contents returns the chunk texts in input order.
func (t TokenChunks) Contents() []string {
	result := make([]string, len(t.chunks))
	for i, c := range t.chunks {
		result[i] = c.content
	}
	return result
}

// Len returns the number of chunks.
func (t TokenChunks) Len() int { return len(t.chunks) }

// MaxTokens returns the budget the chunks were built for.
func (t TokenChunks) MaxTokens() int { return t.maxTokens }

// SplitIntoChunks is a convenience wrapper returning only the chunk texts.
func SplitIntoChunks(content string, maxTokens int, counter domainservice.TokenCounter) ([]string, error) {
	chunks, err := NewTokenChunks(content, maxTokens, counter)
	if err != nil {
		return nil, err
	}
	return chunks.Contents(), nil
}
