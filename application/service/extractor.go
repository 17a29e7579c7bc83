package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainservice "github.com/redrover-dev/redrover/domain/service"
	"github.com/redrover-dev/redrover/domain/standards"
	"github.com/redrover-dev/redrover/infrastructure/chunking"
	"github.com/redrover-dev/redrover/infrastructure/provider"
)

// Extraction defaults.
const (
	DefaultContextWindow       = 8192
	DefaultCompletionReserve   = 400
	DefaultPatternTemperature  = 0.7
	DefaultCondenseTemperature = 0.1
)

// PatternExtractor asks the chat model for the design patterns of every
// diff segment, then condenses all observations into one standards text.
type PatternExtractor struct {
	generator           provider.TextGenerator
	counter             domainservice.TokenCounter
	contextWindow       int
	completionReserve   int
	patternTemperature  float64
	condenseTemperature float64
	log                 *slog.Logger
}

// NewPatternExtractor creates a new PatternExtractor with default limits.
func NewPatternExtractor(generator provider.TextGenerator, counter domainservice.TokenCounter, log *slog.Logger) *PatternExtractor {
	return &PatternExtractor{
		generator:           generator,
		counter:             counter,
		contextWindow:       DefaultContextWindow,
		completionReserve:   DefaultCompletionReserve,
		patternTemperature:  DefaultPatternTemperature,
		condenseTemperature: DefaultCondenseTemperature,
		log:                 log,
	}
}

// WithContextWindow sets the model context window in tokens.
func (e *PatternExtractor) WithContextWindow(n int) *PatternExtractor {
	e.contextWindow = n
	return e
}

// WithCompletionReserve sets the tokens kept free for each completion. It
// is also the completion cap sent with every request.
func (e *PatternExtractor) WithCompletionReserve(n int) *PatternExtractor {
	e.completionReserve = n
	return e
}

// WithPatternTemperature sets the temperature of per-segment calls.
func (e *PatternExtractor) WithPatternTemperature(t float64) *PatternExtractor {
	e.patternTemperature = t
	return e
}

// WithCondenseTemperature sets the temperature of the condensation call.
func (e *PatternExtractor) WithCondenseTemperature(t float64) *PatternExtractor {
	e.condenseTemperature = t
	return e
}

// SegmentBudget returns the token budget of one diff segment: the context
// window minus the rendered empty prompt, the system text and the
// completion reserve.
func (e *PatternExtractor) SegmentBudget() int {
	overhead := e.counter.CountTokens(PatternPrompt("")) + e.counter.CountTokens(patternSystemPrompt)
	return e.contextWindow - overhead - e.completionReserve
}

// Extract runs pattern extraction over diffs in order. Every segment of
// every diff produces one observation; the condensed text comes from a
// final call over all of them. Usage is summed over every call. The first
// provider failure aborts the run.
func (e *PatternExtractor) Extract(ctx context.Context, diffs []standards.Diff) (standards.Extraction, error) {
	if len(diffs) == 0 {
		return standards.Extraction{}, ErrNoDiffs
	}

	var observations []string
	var usage standards.Usage

	for _, diff := range diffs {
		// Recomputed per diff; nothing carries over between diffs.
		budget := e.SegmentBudget()
		if budget <= 0 {
			return standards.Extraction{}, fmt.Errorf("%w: budget %d", ErrNoBudget, budget)
		}

		chunks, err := chunking.NewTokenChunks(diff.Text(), budget, e.counter)
		if err != nil {
			return standards.Extraction{}, fmt.Errorf("chunk diff of #%d: %w", diff.Number(), err)
		}

		e.log.Info("extracting patterns",
			slog.Int("pr", diff.Number()),
			slog.Int("segments", chunks.Len()),
			slog.Int("budget", budget),
		)

		for i, chunk := range chunks.All() {
			if chunk.Oversized(budget) {
				e.log.Warn("segment exceeds budget",
					slog.Int("pr", diff.Number()),
					slog.Int("segment", i),
					slog.Int("tokens", chunk.Tokens()),
				)
			}

			text, u, err := e.complete(ctx, patternSystemPrompt, PatternPrompt(chunk.Content()), e.patternTemperature)
			if err != nil {
				return standards.Extraction{}, fmt.Errorf("extract patterns of #%d segment %d: %w", diff.Number(), i, err)
			}

			observations = append(observations, text)
			usage = usage.Add(u)
		}
	}

	condensed, u, err := e.complete(ctx, condenseSystemPrompt, CondensePrompt(strings.Join(observations, "\n\n")), e.condenseTemperature)
	if err != nil {
		return standards.Extraction{}, fmt.Errorf("condense patterns: %w", err)
	}
	usage = usage.Add(u)

	e.log.Info("extraction complete",
		slog.Int("observations", len(observations)),
		slog.Int("prompt_tokens", usage.PromptTokens()),
		slog.Int("completion_tokens", usage.CompletionTokens()),
	)

	return standards.NewExtraction(observations, condensed, usage), nil
}

func (e *PatternExtractor) complete(ctx context.Context, system, user string, temperature float64) (string, standards.Usage, error) {
	if err := ctx.Err(); err != nil {
		return "", standards.Usage{}, err
	}

	req := provider.NewChatCompletionRequest([]provider.Message{
		provider.SystemMessage(system),
		provider.UserMessage(user),
	}).WithMaxTokens(e.completionReserve).WithTemperature(temperature)

	resp, err := e.generator.ChatCompletion(ctx, req)
	if err != nil {
		return "", standards.Usage{}, err
	}

	u := standards.NewUsage(resp.Usage().PromptTokens(), resp.Usage().CompletionTokens())
	e.log.Debug("chat completion",
		slog.Int("prompt_tokens", u.PromptTokens()),
		slog.Int("completion_tokens", u.CompletionTokens()),
		slog.String("finish_reason", resp.FinishReason()),
	)

	return cleanThinkingTags(resp.Content()), u, nil
}

// cleanThinkingTags removes <think>...</think> blocks that reasoning models
// emit ahead of their answer.
func cleanThinkingTags(text string) string {
	const open, closing = "<think>", "</think>"
	for {
		start := strings.Index(text, open)
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], closing)
		if end == -1 {
			// Unclosed tag, just remove the opening tag
			text = text[:start] + text[start+len(open):]
			continue
		}
		text = text[:start] + text[start+end+len(closing):]
	}
	return strings.TrimSpace(text)
}
