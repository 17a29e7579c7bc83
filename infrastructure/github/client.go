// Package github lists closed pull requests and downloads their unified
// diffs through the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/redrover-dev/redrover/domain/service"
	"github.com/redrover-dev/redrover/domain/standards"
	"github.com/redrover-dev/redrover/internal/retry"
)

// diffMediaType asks the API to serve a pull request as a unified diff.
const diffMediaType = "application/vnd.github.v3.diff"

// maxPerPage is the largest page size the API honours.
const maxPerPage = 100

// ErrUnauthorized indicates the token was rejected by the API.
var ErrUnauthorized = errors.New("github: unauthorized")

// Client talks to the GitHub REST API.
type Client struct {
	client *gh.Client
	retry  retry.Policy
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise server or a test double.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// WithRetry sets the retry policy applied to every request.
func WithRetry(p retry.Policy) Option {
	return func(c *Client) error {
		c.retry = p
		return nil
	}
}

// NewClient creates a Client authenticating with token.
func NewClient(token string, httpClient *http.Client, opts ...Option) (*Client, error) {
	c := &Client{
		client: gh.NewClient(httpClient).WithAuthToken(token),
		retry:  retry.None(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ListClosedPullRequests returns up to limit of the most recently closed pull
// requests of owner/repo in the order the API returns them. Limits above one
// page are served by following the pagination links.
func (c *Client) ListClosedPullRequests(ctx context.Context, owner, repo string, limit int) ([]standards.PullRequest, error) {
	if limit <= 0 {
		return nil, nil
	}

	opts := &gh.PullRequestListOptions{
		State:       "closed",
		ListOptions: gh.ListOptions{PerPage: min(limit, maxPerPage)},
	}

	result := make([]standards.PullRequest, 0, limit)
	for {
		var page []*gh.PullRequest
		var resp *gh.Response
		err := c.retry.Do(ctx, func() error {
			var err error
			page, resp, err = c.client.PullRequests.List(ctx, owner, repo, opts)
			return err
		}, isRetryable)
		if err != nil {
			return nil, wrapError(fmt.Sprintf("list pull requests of %s/%s", owner, repo), err)
		}

		for _, pr := range page {
			result = append(result, standards.NewPullRequest(pr.GetNumber(), pr.GetTitle(), pr.GetDiffURL()))
			if len(result) == limit {
				return result, nil
			}
		}

		if resp == nil || resp.NextPage == 0 || len(page) == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// FetchDiff downloads the unified diff served at diffURL. The same token
// is sent, so diffs of private repositories are readable.
func (c *Client) FetchDiff(ctx context.Context, diffURL string) (string, error) {
	var buf bytes.Buffer
	err := c.retry.Do(ctx, func() error {
		buf.Reset()
		req, err := c.client.NewRequest(http.MethodGet, diffURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", diffMediaType)
		_, err = c.client.Do(ctx, req, &buf)
		return err
	}, isRetryable)
	if err != nil {
		return "", wrapError("fetch diff "+diffURL, err)
	}
	return buf.String(), nil
}

func isRetryable(err error) bool {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func wrapError(operation string, err error) error {
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %w", operation, ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

var _ service.PullRequestSource = (*Client)(nil)
