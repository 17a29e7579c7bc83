package provider

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// CachingTransport is an http.RoundTripper that stores chat completion
// answers on disk. Entries are keyed by the model, the sampling parameters
// and the conversation, so re-running over identical segments costs no API
// calls. Requests that are not chat completions, and answers other than 2xx,
// go straight to the inner transport. Cache I/O errors are non-fatal.
type CachingTransport struct {
	inner http.RoundTripper
	dir   string
}

// NewCachingTransport creates a CachingTransport that stores entries under
// dir. If inner is nil, http.DefaultTransport is used.
func NewCachingTransport(dir string, inner http.RoundTripper) *CachingTransport {
	if inner == nil {
		inner = http.DefaultTransport
	}
	_ = os.MkdirAll(dir, 0o755)
	return &CachingTransport{inner: inner, dir: dir}
}

// completionCall is the part of a chat completion request that determines
// its answer.
type completionCall struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// key identifies the call. The endpoint path is included so that two
// deployments behind one cache directory never share answers.
func (c completionCall) key(path string) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\n%s\n%g\n%d\n", path, c.Model, c.Temperature, c.MaxTokens)
	for _, m := range c.Messages {
		_, _ = fmt.Fprintf(h, "%s\x00%d\x00%s\n", m.Role, len(m.Content), m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fileName is "<model>-<key prefix>.json", so entries can be found per model.
func (c completionCall) fileName(path string) string {
	model := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, c.Model)
	return model + "-" + c.key(path)[:32] + ".json"
}

type cachedCompletion struct {
	Model      string              `json:"model"`
	Messages   int                 `json:"messages"`
	StatusCode int                 `json:"status_code"`
	Header     map[string][]string `json:"header"`
	Response   json.RawMessage     `json:"response"`
}

// RoundTrip implements http.RoundTripper.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return t.inner.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))

	var call completionCall
	if err := json.Unmarshal(body, &call); err != nil || call.Model == "" || len(call.Messages) == 0 {
		return t.inner.RoundTrip(req)
	}

	path := filepath.Join(t.dir, call.fileName(req.URL.Path))

	if resp, ok := loadCompletion(path, req); ok {
		return resp, nil
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	storeCompletion(path, cachedCompletion{
		Model:      call.Model,
		Messages:   len(call.Messages),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Response:   respBody,
	})

	resp.Body = io.NopCloser(bytes.NewReader(respBody))
	return resp, nil
}

func loadCompletion(path string, req *http.Request) (*http.Response, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cachedCompletion
	if err := json.Unmarshal(data, &entry); err != nil || len(entry.Response) == 0 {
		return nil, false
	}

	return &http.Response{
		StatusCode: entry.StatusCode,
		Status:     http.StatusText(entry.StatusCode),
		Header:     entry.Header,
		Body:       io.NopCloser(bytes.NewReader(entry.Response)),
		Request:    req,
	}, true
}

// storeCompletion writes the entry. Answers that are not valid JSON fail to
// marshal and are simply not cached.
func storeCompletion(path string, entry cachedCompletion) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
