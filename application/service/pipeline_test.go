package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/redrover-dev/redrover/domain/standards"
)

func newTestPipeline(source *fakeSource, gen *fakeGenerator) *Pipeline {
	log := discardLogger()
	p := NewPipeline(
		NewDiffCollector(source, wordCounter, log),
		NewPatternExtractor(gen, wordCounter, log),
		NewOutputWriter(log),
		log,
	)
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func twoDiffSource() *fakeSource {
	source := newFakeSource()
	source.add(1, words(50))
	source.add(2, words(40000))
	return source
}

func TestPipeline_StandardsMode(t *testing.T) {
	gen := newFakeGenerator("Pattern A", "Condensed: Pattern A")
	p := newTestPipeline(twoDiffSource(), gen)
	out := filepath.Join(t.TempDir(), "red_rover_standards.txt")

	result, err := p.Run(context.Background(), RunRequest{
		RunID:           "run-1",
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputStandards,
		OutputPath:      out,
	})
	require.NoError(t, err)

	require.Len(t, result.Collection.Diffs(), 1)
	assert.Equal(t, 1, result.Collection.Diffs()[0].Number())
	assert.Equal(t, []string{"Pattern A"}, result.Extraction.Observations())
	assert.Len(t, gen.requests, 2)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Condensed: Pattern A", string(data))
}

func TestPipeline_PromptMode(t *testing.T) {
	gen := newFakeGenerator("Pattern A", "Condensed: Pattern A")
	p := newTestPipeline(twoDiffSource(), gen)
	out := filepath.Join(t.TempDir(), "red_rover", "custom_prompt.txt")

	_, err := p.Run(context.Background(), RunRequest{
		RunID:           "run-2",
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputPrompt,
		OutputPath:      out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, ReviewPrompt("Condensed: Pattern A"), string(data))
	assert.Contains(t, string(data), "Condensed: Pattern A")
}

func TestPipeline_WritesReport(t *testing.T) {
	gen := newFakeGenerator("Pattern A", "Condensed: Pattern A")
	p := newTestPipeline(twoDiffSource(), gen)
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.yaml")

	_, err := p.Run(context.Background(), RunRequest{
		RunID:           "run-3",
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputStandards,
		OutputPath:      filepath.Join(dir, "standards.txt"),
		ReportPath:      reportPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report Report
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, "run-3", report.RunID)
	assert.Equal(t, "acme/widgets", report.Repository)
	assert.Equal(t, "standards", report.Mode)
	assert.Equal(t, []ReportDiff{{Number: 1, Tokens: 50}}, report.Retained)
	assert.Equal(t, []ReportDiff{{Number: 2, Tokens: 40000}}, report.Dropped)
	assert.Equal(t, []string{"Pattern A"}, report.Observations)
	assert.Equal(t, "Condensed: Pattern A", report.Condensed)
	assert.Equal(t, ReportUsage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30}, report.Usage)
	assert.True(t, report.GeneratedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestPipeline_NoRetainedDiffsWritesNothing(t *testing.T) {
	source := newFakeSource()
	source.add(1, words(40000))
	gen := newFakeGenerator()
	p := newTestPipeline(source, gen)

	out := filepath.Join(t.TempDir(), "standards.txt")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	_, err := p.Run(context.Background(), RunRequest{
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputStandards,
		OutputPath:      out,
	})
	require.ErrorIs(t, err, ErrNoDiffs)
	assert.Empty(t, gen.requests)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestPipeline_ProviderFailureWritesNothing(t *testing.T) {
	gen := newFakeGenerator()
	gen.failAt = 0
	gen.err = errors.New("unauthorized")
	p := newTestPipeline(twoDiffSource(), gen)

	out := filepath.Join(t.TempDir(), "standards.txt")
	_, err := p.Run(context.Background(), RunRequest{
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputStandards,
		OutputPath:      out,
	})
	require.ErrorIs(t, err, gen.err)
	assert.NoFileExists(t, out)
}

func TestRunRequest_Validate(t *testing.T) {
	valid := RunRequest{
		Owner:           "acme",
		Repo:            "widgets",
		MaxPullRequests: 10,
		TokenCeiling:    30000,
		Mode:            standards.OutputStandards,
		OutputPath:      "out.txt",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*RunRequest)
	}{
		{"missing owner", func(r *RunRequest) { r.Owner = "" }},
		{"missing repo", func(r *RunRequest) { r.Repo = "" }},
		{"zero pull requests", func(r *RunRequest) { r.MaxPullRequests = 0 }},
		{"zero ceiling", func(r *RunRequest) { r.TokenCeiling = 0 }},
		{"unknown mode", func(r *RunRequest) { r.Mode = "html" }},
		{"missing output", func(r *RunRequest) { r.OutputPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestPipeline_InvalidRequestMakesNoCalls(t *testing.T) {
	source := twoDiffSource()
	gen := newFakeGenerator()
	p := newTestPipeline(source, gen)

	_, err := p.Run(context.Background(), RunRequest{Mode: standards.OutputStandards})
	require.Error(t, err)
	assert.Empty(t, source.fetched)
	assert.Empty(t, gen.requests)
}
