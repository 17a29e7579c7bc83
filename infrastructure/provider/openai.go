package provider

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/redrover-dev/redrover/internal/retry"
)

// DefaultChatModel is used when no model is configured.
const DefaultChatModel = "gpt-4"

// OpenAIProvider implements text generation using the OpenAI chat API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	retry  retry.Policy
}

// OpenAIConfig holds configuration for OpenAI provider.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	ChatModel     string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	// CacheDir enables an on-disk cache of successful responses when set.
	CacheDir string
}

// NewOpenAIProviderFromConfig creates a provider from configuration.
func NewOpenAIProviderFromConfig(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)

	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Timeout > 0 || cfg.CacheDir != "" {
		httpClient := &http.Client{Timeout: cfg.Timeout}
		if cfg.CacheDir != "" {
			httpClient.Transport = NewCachingTransport(cfg.CacheDir, nil)
		}
		config.HTTPClient = httpClient
	}

	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		retry: retry.Policy{
			MaxRetries:    cfg.MaxRetries,
			InitialDelay:  cfg.InitialDelay,
			BackoffFactor: cfg.BackoffFactor,
		},
	}
}

// Model returns the chat model used for completions.
func (p *OpenAIProvider) Model() string { return p.model }

// ChatCompletion generates a chat completion. The returned content is
// trimmed of surrounding whitespace.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages()))
	for i, m := range req.Messages() {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role(),
			Content: m.Content(),
		}
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}

	if req.MaxTokens() > 0 {
		openaiReq.MaxTokens = req.MaxTokens()
	}
	if req.HasTemperature() {
		openaiReq.Temperature = wireTemperature(req.Temperature())
	}

	var resp openai.ChatCompletionResponse
	err := p.retry.Do(ctx, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, openaiReq)
		return err
	}, isRetryable)
	if err != nil {
		return ChatCompletionResponse{}, wrapError("chat_completion", err)
	}

	if len(resp.Choices) == 0 {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "empty response", ErrNoChoices)
	}

	usage := NewUsage(
		resp.Usage.PromptTokens,
		resp.Usage.CompletionTokens,
		resp.Usage.TotalTokens,
	)

	return NewChatCompletionResponse(
		strings.TrimSpace(resp.Choices[0].Message.Content),
		string(resp.Choices[0].FinishReason),
		usage,
	), nil
}

// wireTemperature converts a temperature for the request body. The client
// omits a zero temperature, so zero is sent as the smallest positive float32.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// isRetryable determines if an error should be retried.
func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	return errors.As(err, &reqErr)
}

// wrapError wraps an OpenAI error into a ProviderError.
func wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, "request failed", err)
	}

	return NewProviderError(operation, 0, "request failed", err)
}

// Ensure OpenAIProvider implements the interface.
var _ TextGenerator = (*OpenAIProvider)(nil)
