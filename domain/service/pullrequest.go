package service

import (
	"context"

	"github.com/redrover-dev/redrover/domain/standards"
)

// PullRequestSource lists pull requests and fetches their diffs from a
// code hosting API.
type PullRequestSource interface {
	// ListClosedPullRequests returns up to limit of the most recently closed
	// pull requests, in the order the hosting API returns them.
	ListClosedPullRequests(ctx context.Context, owner, repo string, limit int) ([]standards.PullRequest, error)

	// FetchDiff returns the unified diff served at diffURL.
	FetchDiff(ctx context.Context, diffURL string) (string, error)
}
