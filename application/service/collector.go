package service

import (
	"context"
	"fmt"
	"log/slog"

	domainservice "github.com/redrover-dev/redrover/domain/service"
	"github.com/redrover-dev/redrover/domain/standards"
)

// DiffCollector gathers the diffs of recently closed pull requests and
// keeps only those small enough to analyze.
type DiffCollector struct {
	source  domainservice.PullRequestSource
	counter domainservice.TokenCounter
	log     *slog.Logger
}

// NewDiffCollector creates a new DiffCollector.
func NewDiffCollector(source domainservice.PullRequestSource, counter domainservice.TokenCounter, log *slog.Logger) *DiffCollector {
	return &DiffCollector{
		source:  source,
		counter: counter,
		log:     log,
	}
}

// Collect lists up to maxResults closed pull requests of owner/repo and
// fetches each diff in turn. A diff is retained when its token count is
// strictly below ceiling; larger diffs are recorded as dropped. Any error
// from the hosting API aborts collection.
func (c *DiffCollector) Collect(ctx context.Context, owner, repo string, maxResults, ceiling int) (standards.Collection, error) {
	prs, err := c.source.ListClosedPullRequests(ctx, owner, repo, maxResults)
	if err != nil {
		return standards.Collection{}, fmt.Errorf("collect diffs: %w", err)
	}

	c.log.Info("listed closed pull requests", slog.String("repo", owner+"/"+repo), slog.Int("count", len(prs)))

	var retained []standards.Diff
	var dropped []standards.DroppedDiff

	for _, pr := range prs {
		text, err := c.source.FetchDiff(ctx, pr.DiffURL())
		if err != nil {
			return standards.Collection{}, fmt.Errorf("collect diff of #%d: %w", pr.Number(), err)
		}

		tokens := c.counter.CountTokens(text)
		if tokens >= ceiling {
			c.log.Info("dropping oversized diff",
				slog.Int("pr", pr.Number()),
				slog.Int("tokens", tokens),
				slog.Int("ceiling", ceiling),
			)
			dropped = append(dropped, standards.NewDroppedDiff(pr.Number(), tokens))
			continue
		}

		c.log.Debug("retained diff", slog.Int("pr", pr.Number()), slog.Int("tokens", tokens))
		retained = append(retained, standards.NewDiff(pr.Number(), text, tokens))
	}

	return standards.NewCollection(retained, dropped), nil
}
