// Package tokenizer counts tokens the way OpenAI models see them.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	domainservice "github.com/redrover-dev/redrover/domain/service"
)

// endOfText is stripped before encoding so diffs that happen to contain it
// are measured as ordinary text.
const endOfText = "<|endoftext|>"

var loaderOnce sync.Once

// useOfflineLoader makes tiktoken read BPE ranks from the embedded loader
// instead of downloading them on first use.
func useOfflineLoader() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

// Tiktoken counts tokens with the BPE encoding associated with a model.
type Tiktoken struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewTiktoken creates a counter for the encoding used by model
// (for example "gpt-3.5-turbo", which maps to cl100k_base).
func NewTiktoken(model string) (*Tiktoken, error) {
	useOfflineLoader()

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("encoding for model %q: %w", model, err)
	}
	return &Tiktoken{model: model, enc: enc}, nil
}

// Model returns the model the encoding was chosen for.
func (t *Tiktoken) Model() string { return t.model }

// CountTokens implements domainservice.TokenCounter.
func (t *Tiktoken) CountTokens(text string) int {
	text = strings.ReplaceAll(text, endOfText, "")
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Estimator approximates token counts at four characters per token.
// It is not billing-accurate and exists for offline dry runs.
type Estimator struct{}

// CountTokens implements domainservice.TokenCounter.
func (Estimator) CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// Ensure both counters implement the interface.
var (
	_ domainservice.TokenCounter = (*Tiktoken)(nil)
	_ domainservice.TokenCounter = Estimator{}
)
