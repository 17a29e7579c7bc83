package service

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/redrover-dev/redrover/domain/standards"
)

// Report summarises one run for later inspection.
type Report struct {
	RunID        string       `yaml:"run_id"`
	Repository   string       `yaml:"repository"`
	Mode         string       `yaml:"mode"`
	Output       string       `yaml:"output"`
	GeneratedAt  time.Time    `yaml:"generated_at"`
	Retained     []ReportDiff `yaml:"retained"`
	Dropped      []ReportDiff `yaml:"dropped,omitempty"`
	Observations []string     `yaml:"observations"`
	Condensed    string       `yaml:"condensed"`
	Usage        ReportUsage  `yaml:"usage"`
}

// ReportDiff identifies a pull request and the size of its diff.
type ReportDiff struct {
	Number int `yaml:"number"`
	Tokens int `yaml:"tokens"`
}

// ReportUsage holds the token totals of a run.
type ReportUsage struct {
	PromptTokens     int `yaml:"prompt_tokens"`
	CompletionTokens int `yaml:"completion_tokens"`
	TotalTokens      int `yaml:"total_tokens"`
}

// NewReport builds a Report from the results of a run.
func NewReport(runID, repository string, mode standards.OutputMode, output string, collection standards.Collection, extraction standards.Extraction, at time.Time) Report {
	r := Report{
		RunID:        runID,
		Repository:   repository,
		Mode:         mode.String(),
		Output:       output,
		GeneratedAt:  at.UTC(),
		Observations: extraction.Observations(),
		Condensed:    extraction.Condensed(),
		Usage: ReportUsage{
			PromptTokens:     extraction.Usage().PromptTokens(),
			CompletionTokens: extraction.Usage().CompletionTokens(),
			TotalTokens:      extraction.Usage().TotalTokens(),
		},
	}
	for _, d := range collection.Diffs() {
		r.Retained = append(r.Retained, ReportDiff{Number: d.Number(), Tokens: d.Tokens()})
	}
	for _, d := range collection.Dropped() {
		r.Dropped = append(r.Dropped, ReportDiff{Number: d.Number(), Tokens: d.Tokens()})
	}
	return r
}

// WriteReport encodes r as YAML at path.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
