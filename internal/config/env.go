package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., GITHUB_TOKEN, OPENAI_MODEL).
type EnvConfig struct {
	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// HTTPCacheDir is the directory for caching LLM responses to disk.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// GitHub configures the hosting API.
	GitHub GitHubEnv `envconfig:"GITHUB"`

	// OpenAI configures the chat completion API.
	OpenAI OpenAIEnv `envconfig:"OPENAI"`

	// MaxPullRequests is the number of closed pull requests to fetch.
	// Env: MAX_PULL_REQUESTS (default: 10)
	MaxPullRequests int `envconfig:"MAX_PULL_REQUESTS" default:"10"`

	// DiffTokenCeiling drops diffs measuring this many tokens or more.
	// Env: DIFF_TOKEN_CEILING (default: 30000)
	DiffTokenCeiling int `envconfig:"DIFF_TOKEN_CEILING" default:"30000"`

	// TokenizerModel selects the encoding used for counting.
	// Env: TOKENIZER_MODEL (default: gpt-3.5-turbo)
	TokenizerModel string `envconfig:"TOKENIZER_MODEL" default:"gpt-3.5-turbo"`

	// ContextWindow is the chat model context window.
	// Env: CONTEXT_WINDOW (default: 8192)
	ContextWindow int `envconfig:"CONTEXT_WINDOW" default:"8192"`

	// CompletionReserve is held back from the window for the reply.
	// Env: COMPLETION_RESERVE (default: 400)
	CompletionReserve int `envconfig:"COMPLETION_RESERVE" default:"400"`

	// PatternTemperature is used for per-segment extraction calls.
	// Env: PATTERN_TEMPERATURE (default: 0.7)
	PatternTemperature float64 `envconfig:"PATTERN_TEMPERATURE" default:"0.7"`

	// CondenseTemperature is used for the condensation call.
	// Env: CONDENSE_TEMPERATURE (default: 0.1)
	CondenseTemperature float64 `envconfig:"CONDENSE_TEMPERATURE" default:"0.1"`

	// MaxRetries applies to both APIs. Zero fails on the first error.
	// Env: MAX_RETRIES (default: 0)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// StandardsFile is where condensed standards are written.
	// Env: STANDARDS_FILE (default: red_rover_standards.txt)
	StandardsFile string `envconfig:"STANDARDS_FILE" default:"red_rover_standards.txt"`

	// PromptFile is where the review prompt is written.
	// Env: PROMPT_FILE (default: red_rover/custom_prompt.txt)
	PromptFile string `envconfig:"PROMPT_FILE" default:"red_rover/custom_prompt.txt"`

	// ReportFile is an optional YAML run report path.
	// Env: REPORT_FILE
	ReportFile string `envconfig:"REPORT_FILE"`
}

// GitHubEnv holds environment configuration for the hosting API.
type GitHubEnv struct {
	// Token is the access token.
	// Env: GITHUB_TOKEN
	Token string `envconfig:"TOKEN"`

	// Owner is the repository owner.
	// Env: GITHUB_OWNER
	Owner string `envconfig:"OWNER"`

	// Repo is the repository name, or "owner/name".
	// Env: GITHUB_REPO
	Repo string `envconfig:"REPO"`

	// APIURL is the REST API base URL.
	// Env: GITHUB_API_URL (default: https://api.github.com/)
	APIURL string `envconfig:"API_URL" default:"https://api.github.com/"`

	// Timeout is the REST API request timeout in seconds.
	// Env: GITHUB_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`
}

// OpenAIEnv holds environment configuration for the chat completion API.
type OpenAIEnv struct {
	// APIKey is the API key for authentication.
	// Env: OPENAI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL overrides the API base URL.
	// Env: OPENAI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the chat model.
	// Env: OPENAI_MODEL (default: gpt-4)
	Model string `envconfig:"MODEL" default:"gpt-4"`

	// Timeout is the request timeout in seconds.
	// Env: OPENAI_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	cfg = applyOption(cfg, WithGitHub(e.toGitHubConfig()))
	cfg = applyOption(cfg, WithEndpoint(e.toEndpoint()))
	cfg = applyOption(cfg, WithExtraction(e.toExtractionConfig()))
	cfg = applyOption(cfg, WithOutput(NewOutputConfig().
		WithStandardsFile(e.StandardsFile).
		WithPromptFile(e.PromptFile).
		WithReportFile(e.ReportFile)))

	return cfg
}

func (e EnvConfig) toGitHubConfig() GitHubConfig {
	opts := []GitHubOption{
		WithGitHubToken(e.GitHub.Token),
		WithRepository(e.GitHub.Owner, e.GitHub.Repo),
	}
	if e.GitHub.Timeout > 0 {
		opts = append(opts, WithGitHubTimeout(seconds(e.GitHub.Timeout)))
	}
	if e.GitHub.APIURL != "" {
		opts = append(opts, WithAPIURL(e.GitHub.APIURL))
	}
	if e.MaxPullRequests != 0 {
		opts = append(opts, WithMaxPullRequests(e.MaxPullRequests))
	}
	if e.DiffTokenCeiling > 0 {
		opts = append(opts, WithDiffTokenCeiling(e.DiffTokenCeiling))
	}
	return NewGitHubConfigWithOptions(opts...)
}

func (e EnvConfig) toEndpoint() Endpoint {
	opts := []EndpointOption{
		WithAPIKey(e.OpenAI.APIKey),
		WithTimeout(seconds(e.OpenAI.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(seconds(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
	}
	if e.OpenAI.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.OpenAI.BaseURL))
	}
	if e.OpenAI.Model != "" {
		opts = append(opts, WithModel(e.OpenAI.Model))
	}
	return NewEndpointWithOptions(opts...)
}

func (e EnvConfig) toExtractionConfig() ExtractionConfig {
	x := NewExtractionConfig().
		WithPatternTemperature(e.PatternTemperature).
		WithCondenseTemperature(e.CondenseTemperature)
	if e.TokenizerModel != "" {
		x = x.WithTokenizerModel(e.TokenizerModel)
	}
	if e.ContextWindow > 0 {
		x = x.WithContextWindow(e.ContextWindow)
	}
	if e.CompletionReserve > 0 {
		x = x.WithCompletionReserve(e.CompletionReserve)
	}
	return x
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
