package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	domainservice "github.com/redrover-dev/redrover/domain/service"
	"github.com/redrover-dev/redrover/domain/standards"
	"github.com/redrover-dev/redrover/infrastructure/provider"
)

// wordCounter counts one token per whitespace-separated word.
var wordCounter = domainservice.TokenCounterFunc(func(text string) int {
	return len(strings.Fields(text))
})

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	prs       []standards.PullRequest
	diffs     map[string]string
	listErr   error
	fetchErr  error
	fetched   []string
	listLimit int
	listOwner string
	listRepo  string
}

func newFakeSource() *fakeSource {
	return &fakeSource{diffs: map[string]string{}}
}

func (s *fakeSource) add(number int, diff string) {
	url := fmt.Sprintf("https://github.com/acme/widgets/pull/%d.diff", number)
	s.prs = append(s.prs, standards.NewPullRequest(number, fmt.Sprintf("PR %d", number), url))
	s.diffs[url] = diff
}

func (s *fakeSource) ListClosedPullRequests(_ context.Context, owner, repo string, limit int) ([]standards.PullRequest, error) {
	s.listOwner, s.listRepo, s.listLimit = owner, repo, limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.prs) > limit {
		return s.prs[:limit], nil
	}
	return s.prs, nil
}

func (s *fakeSource) FetchDiff(_ context.Context, diffURL string) (string, error) {
	s.fetched = append(s.fetched, diffURL)
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	return s.diffs[diffURL], nil
}

// fakeGenerator replies with scripted contents in order and records every
// request it receives.
type fakeGenerator struct {
	replies  []string
	failAt   int
	err      error
	requests []provider.ChatCompletionRequest
}

func newFakeGenerator(replies ...string) *fakeGenerator {
	return &fakeGenerator{replies: replies, failAt: -1}
}

func (g *fakeGenerator) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	call := len(g.requests)
	g.requests = append(g.requests, req)
	if call == g.failAt {
		return provider.ChatCompletionResponse{}, g.err
	}

	content := fmt.Sprintf("reply %d", call)
	if call < len(g.replies) {
		content = g.replies[call]
	}
	return provider.NewChatCompletionResponse(content, "stop", provider.NewUsage(10, 5, 15)), nil
}

func userContent(req provider.ChatCompletionRequest) string {
	for _, m := range req.Messages() {
		if m.Role() == "user" {
			return m.Content()
		}
	}
	return ""
}

func systemContent(req provider.ChatCompletionRequest) string {
	for _, m := range req.Messages() {
		if m.Role() == "system" {
			return m.Content()
		}
	}
	return ""
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("x ", n))
}
