package standards

import "fmt"

// OutputMode selects what the run writes.
type OutputMode string

// OutputMode values.
const (
	// OutputStandards writes the condensed standards verbatim.
	OutputStandards OutputMode = "standards"
	// OutputPrompt embeds the condensed standards in the review prompt.
	OutputPrompt OutputMode = "prompt"
)

// ParseOutputMode parses a mode name.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case OutputStandards, OutputPrompt:
		return OutputMode(s), nil
	default:
		return "", fmt.Errorf("unknown output mode %q", s)
	}
}

// String implements fmt.Stringer.
func (m OutputMode) String() string { return string(m) }
