package standards

// Usage accumulates token counts reported by the chat completion provider.
type Usage struct {
	promptTokens     int
	completionTokens int
}

// NewUsage creates a new Usage.
func NewUsage(prompt, completion int) Usage {
	return Usage{promptTokens: prompt, completionTokens: completion}
}

// PromptTokens returns the number of prompt tokens.
func (u Usage) PromptTokens() int { return u.promptTokens }

// CompletionTokens returns the number of completion tokens.
func (u Usage) CompletionTokens() int { return u.completionTokens }

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() int { return u.promptTokens + u.completionTokens }

// Add returns the sum of two usages.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		promptTokens:     u.promptTokens + other.promptTokens,
		completionTokens: u.completionTokens + other.completionTokens,
	}
}

// Extraction is the result of pattern extraction: every per-segment
// observation in processing order, the condensed standards text, and the
// accumulated token usage of all calls.
type Extraction struct {
	observations []string
	condensed    string
	usage        Usage
}

// NewExtraction creates a new Extraction.
func NewExtraction(observations []string, condensed string, usage Usage) Extraction {
	obs := make([]string, len(observations))
	copy(obs, observations)
	return Extraction{observations: obs, condensed: condensed, usage: usage}
}

// Observations returns the pattern observations.
func (e Extraction) Observations() []string {
	obs := make([]string, len(e.observations))
	copy(obs, e.observations)
	return obs
}

// Condensed returns the condensed standards text.
func (e Extraction) Condensed() string { return e.condensed }

// Usage returns the accumulated token usage.
func (e Extraction) Usage() Usage { return e.usage }
