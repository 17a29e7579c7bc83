// Package service orchestrates a standards run: collect diffs, extract and
// condense design patterns, write the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redrover-dev/redrover/domain/standards"
)

// RunRequest describes one standards run.
type RunRequest struct {
	RunID           string
	Owner           string
	Repo            string
	MaxPullRequests int
	TokenCeiling    int
	Mode            standards.OutputMode
	OutputPath      string
	// ReportPath enables the YAML run report when set.
	ReportPath string
}

// Validate checks that the request is complete.
func (r RunRequest) Validate() error {
	var errs []error
	if r.Owner == "" || r.Repo == "" {
		errs = append(errs, errors.New("repository owner and name are required"))
	}
	if r.MaxPullRequests <= 0 {
		errs = append(errs, fmt.Errorf("max pull requests must be positive, got %d", r.MaxPullRequests))
	}
	if r.TokenCeiling <= 0 {
		errs = append(errs, fmt.Errorf("token ceiling must be positive, got %d", r.TokenCeiling))
	}
	if _, err := standards.ParseOutputMode(string(r.Mode)); err != nil {
		errs = append(errs, err)
	}
	if r.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	return errors.Join(errs...)
}

// RunResult is what a completed run produced.
type RunResult struct {
	Collection standards.Collection
	Extraction standards.Extraction
	OutputPath string
}

// Pipeline runs collection, extraction and output in sequence.
type Pipeline struct {
	collector *DiffCollector
	extractor *PatternExtractor
	writer    *OutputWriter
	log       *slog.Logger
	now       func() time.Time
}

// NewPipeline creates a new Pipeline.
func NewPipeline(collector *DiffCollector, extractor *PatternExtractor, writer *OutputWriter, log *slog.Logger) *Pipeline {
	return &Pipeline{
		collector: collector,
		extractor: extractor,
		writer:    writer,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one standards run. Nothing is written unless every step
// before the write succeeded.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if err := req.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("invalid run request: %w", err)
	}

	p.log.Info("starting run",
		slog.String("repo", req.Owner+"/"+req.Repo),
		slog.String("mode", req.Mode.String()),
		slog.Int("max_pull_requests", req.MaxPullRequests),
	)

	collection, err := p.collector.Collect(ctx, req.Owner, req.Repo, req.MaxPullRequests, req.TokenCeiling)
	if err != nil {
		return RunResult{}, err
	}

	p.log.Info("collected diffs",
		slog.Int("retained", len(collection.Diffs())),
		slog.Int("dropped", len(collection.Dropped())),
	)

	extraction, err := p.extractor.Extract(ctx, collection.Diffs())
	if err != nil {
		return RunResult{}, err
	}

	if err := p.writer.Write(req.Mode, req.OutputPath, extraction.Condensed()); err != nil {
		return RunResult{}, err
	}

	if req.ReportPath != "" {
		report := NewReport(req.RunID, req.Owner+"/"+req.Repo, req.Mode, req.OutputPath, collection, extraction, p.now())
		if err := WriteReport(req.ReportPath, report); err != nil {
			return RunResult{}, err
		}
		p.log.Info("wrote report", slog.String("path", req.ReportPath))
	}

	p.log.Info("run complete",
		slog.Int("prompt_tokens", extraction.Usage().PromptTokens()),
		slog.Int("completion_tokens", extraction.Usage().CompletionTokens()),
		slog.Int("total_tokens", extraction.Usage().TotalTokens()),
	)

	return RunResult{
		Collection: collection,
		Extraction: extraction,
		OutputPath: req.OutputPath,
	}, nil
}
