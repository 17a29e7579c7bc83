// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel            = "INFO"
	DefaultGitHubAPIURL        = "https://api.github.com/"
	DefaultMaxPullRequests     = 10
	DefaultDiffTokenCeiling    = 30000
	DefaultChatModel           = "gpt-4"
	DefaultTokenizerModel      = "gpt-3.5-turbo"
	DefaultContextWindow       = 8192
	DefaultCompletionReserve   = 400
	DefaultPatternTemperature  = 0.7
	DefaultCondenseTemperature = 0.1
	DefaultTimeout             = 60 * time.Second
	DefaultMaxRetries          = 0
	DefaultInitialDelay        = 2 * time.Second
	DefaultBackoffFactor       = 2.0
	DefaultStandardsFile       = "red_rover_standards.txt"
	DefaultPromptFile          = "red_rover/custom_prompt.txt"
)

// ErrMissingConfig indicates a required configuration value is absent.
var ErrMissingConfig = errors.New("missing required configuration")

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// GitHubConfig configures access to the hosting API.
type GitHubConfig struct {
	token   string
	owner   string
	repo    string
	apiURL  string
	maxPRs  int
	ceiling int
	timeout time.Duration

	// conflict holds the owner named by an "owner/name" repo when it
	// disagrees with the explicit owner.
	conflict string
}

// NewGitHubConfig creates a new GitHubConfig with defaults.
func NewGitHubConfig() GitHubConfig {
	return GitHubConfig{
		apiURL:  DefaultGitHubAPIURL,
		maxPRs:  DefaultMaxPullRequests,
		ceiling: DefaultDiffTokenCeiling,
		timeout: DefaultTimeout,
	}
}

// Token returns the access token.
func (g GitHubConfig) Token() string { return g.token }

// Owner returns the repository owner.
func (g GitHubConfig) Owner() string { return g.owner }

// Repo returns the repository name.
func (g GitHubConfig) Repo() string { return g.repo }

// APIURL returns the REST API base URL.
func (g GitHubConfig) APIURL() string { return g.apiURL }

// MaxPullRequests returns how many closed pull requests to request.
func (g GitHubConfig) MaxPullRequests() int { return g.maxPRs }

// DiffTokenCeiling returns the exclusive token ceiling for retained diffs.
func (g GitHubConfig) DiffTokenCeiling() int { return g.ceiling }

// Timeout returns the REST API request timeout.
func (g GitHubConfig) Timeout() time.Duration { return g.timeout }

// Slug returns "owner/repo".
func (g GitHubConfig) Slug() string { return g.owner + "/" + g.repo }

// GitHubOption is a functional option for GitHubConfig.
type GitHubOption func(*GitHubConfig)

// WithGitHubToken sets the access token.
func WithGitHubToken(token string) GitHubOption {
	return func(g *GitHubConfig) { g.token = token }
}

// WithRepository sets owner and repository. A repo of the form "owner/name"
// is always split; an explicit owner naming someone else is reported by
// AppConfig.Validate.
func WithRepository(owner, repo string) GitHubOption {
	return func(g *GitHubConfig) {
		owner = strings.TrimSpace(owner)
		repo = strings.TrimSpace(repo)
		g.conflict = ""
		if o, r, ok := strings.Cut(repo, "/"); ok {
			if owner != "" && owner != o {
				g.conflict = o
			}
			if owner == "" {
				owner = o
			}
			repo = r
		}
		g.owner = owner
		g.repo = repo
	}
}

// WithAPIURL sets the REST API base URL.
func WithAPIURL(url string) GitHubOption {
	return func(g *GitHubConfig) {
		if url != "" && !strings.HasSuffix(url, "/") {
			url += "/"
		}
		g.apiURL = url
	}
}

// WithGitHubTimeout sets the REST API request timeout.
func WithGitHubTimeout(d time.Duration) GitHubOption {
	return func(g *GitHubConfig) { g.timeout = d }
}

// WithMaxPullRequests sets the closed pull request count.
func WithMaxPullRequests(n int) GitHubOption {
	return func(g *GitHubConfig) { g.maxPRs = n }
}

// WithDiffTokenCeiling sets the retention ceiling.
func WithDiffTokenCeiling(n int) GitHubOption {
	return func(g *GitHubConfig) { g.ceiling = n }
}

// NewGitHubConfigWithOptions creates a GitHubConfig with functional options.
func NewGitHubConfigWithOptions(opts ...GitHubOption) GitHubConfig {
	g := NewGitHubConfig()
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// With returns a copy of the config with the options applied.
func (g GitHubConfig) With(opts ...GitHubOption) GitHubConfig {
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// Endpoint configures the chat completion service.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		model:         DefaultChatModel,
		timeout:       DefaultTimeout,
		maxRetries:    DefaultMaxRetries,
		initialDelay:  DefaultInitialDelay,
		backoffFactor: DefaultBackoffFactor,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the chat model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// ExtractionConfig holds the token budget and sampling parameters.
type ExtractionConfig struct {
	tokenizerModel      string
	contextWindow       int
	completionReserve   int
	patternTemperature  float64
	condenseTemperature float64
}

// NewExtractionConfig creates an ExtractionConfig with defaults.
func NewExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		tokenizerModel:      DefaultTokenizerModel,
		contextWindow:       DefaultContextWindow,
		completionReserve:   DefaultCompletionReserve,
		patternTemperature:  DefaultPatternTemperature,
		condenseTemperature: DefaultCondenseTemperature,
	}
}

// TokenizerModel returns the model whose encoding counts tokens.
func (x ExtractionConfig) TokenizerModel() string { return x.tokenizerModel }

// ContextWindow returns the model context window in tokens.
func (x ExtractionConfig) ContextWindow() int { return x.contextWindow }

// CompletionReserve returns the completion allowance, also used as max_tokens.
func (x ExtractionConfig) CompletionReserve() int { return x.completionReserve }

// PatternTemperature returns the sampling temperature for per-segment calls.
func (x ExtractionConfig) PatternTemperature() float64 { return x.patternTemperature }

// CondenseTemperature returns the sampling temperature for the condensation call.
func (x ExtractionConfig) CondenseTemperature() float64 { return x.condenseTemperature }

// WithTokenizerModel returns a copy with the tokenizer model set.
func (x ExtractionConfig) WithTokenizerModel(model string) ExtractionConfig {
	x.tokenizerModel = model
	return x
}

// WithContextWindow returns a copy with the context window set.
func (x ExtractionConfig) WithContextWindow(n int) ExtractionConfig {
	x.contextWindow = n
	return x
}

// WithCompletionReserve returns a copy with the completion reserve set.
func (x ExtractionConfig) WithCompletionReserve(n int) ExtractionConfig {
	x.completionReserve = n
	return x
}

// WithPatternTemperature returns a copy with the pattern temperature set.
func (x ExtractionConfig) WithPatternTemperature(t float64) ExtractionConfig {
	x.patternTemperature = t
	return x
}

// WithCondenseTemperature returns a copy with the condensation temperature set.
func (x ExtractionConfig) WithCondenseTemperature(t float64) ExtractionConfig {
	x.condenseTemperature = t
	return x
}

// OutputConfig holds the output file paths.
type OutputConfig struct {
	standardsFile string
	promptFile    string
	reportFile    string
}

// NewOutputConfig creates an OutputConfig with defaults.
func NewOutputConfig() OutputConfig {
	return OutputConfig{
		standardsFile: DefaultStandardsFile,
		promptFile:    DefaultPromptFile,
	}
}

// StandardsFile returns the path of the condensed standards file.
func (o OutputConfig) StandardsFile() string { return o.standardsFile }

// PromptFile returns the path of the review prompt file.
func (o OutputConfig) PromptFile() string { return o.promptFile }

// ReportFile returns the YAML report path; empty disables the report.
func (o OutputConfig) ReportFile() string { return o.reportFile }

// WithStandardsFile returns a copy with the standards path set.
func (o OutputConfig) WithStandardsFile(path string) OutputConfig {
	o.standardsFile = path
	return o
}

// WithPromptFile returns a copy with the prompt path set.
func (o OutputConfig) WithPromptFile(path string) OutputConfig {
	o.promptFile = path
	return o
}

// WithReportFile returns a copy with the report path set.
func (o OutputConfig) WithReportFile(path string) OutputConfig {
	o.reportFile = path
	return o
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	logLevel     string
	logFormat    LogFormat
	httpCacheDir string
	github       GitHubConfig
	endpoint     Endpoint
	extraction   ExtractionConfig
	output       OutputConfig
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		logLevel:   DefaultLogLevel,
		logFormat:  LogFormatPretty,
		github:     NewGitHubConfig(),
		endpoint:   NewEndpoint(),
		extraction: NewExtractionConfig(),
		output:     NewOutputConfig(),
	}
}

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// HTTPCacheDir returns the directory for caching LLM responses to disk.
// Empty string means caching is disabled.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// GitHub returns the hosting API configuration.
func (c AppConfig) GitHub() GitHubConfig { return c.github }

// Endpoint returns the chat completion endpoint configuration.
func (c AppConfig) Endpoint() Endpoint { return c.endpoint }

// Extraction returns the token budget and sampling configuration.
func (c AppConfig) Extraction() ExtractionConfig { return c.extraction }

// Output returns the output file configuration.
func (c AppConfig) Output() OutputConfig { return c.output }

// Validate reports every missing required value in a single error wrapping
// ErrMissingConfig. It performs no I/O.
func (c AppConfig) Validate() error {
	var missing []string
	if c.github.token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.github.owner == "" {
		missing = append(missing, "GITHUB_OWNER")
	}
	if c.github.repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if c.endpoint.apiKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	if c.github.conflict != "" {
		return fmt.Errorf("GITHUB_REPO owner %q conflicts with GITHUB_OWNER %q",
			c.github.conflict, c.github.owner)
	}
	if c.github.maxPRs <= 0 {
		return fmt.Errorf("MAX_PULL_REQUESTS must be positive, got %d", c.github.maxPRs)
	}
	if c.extraction.contextWindow <= c.extraction.completionReserve {
		return fmt.Errorf("CONTEXT_WINDOW (%d) must exceed COMPLETION_RESERVE (%d)",
			c.extraction.contextWindow, c.extraction.completionReserve)
	}
	if t := c.extraction.patternTemperature; t < 0 || t > 2 {
		return fmt.Errorf("PATTERN_TEMPERATURE must be within [0, 2], got %g", t)
	}
	if t := c.extraction.condenseTemperature; t < 0 || t > 2 {
		return fmt.Errorf("CONDENSE_TEMPERATURE must be within [0, 2], got %g", t)
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithHTTPCacheDir sets the directory for caching LLM responses.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithGitHub sets the hosting API configuration.
func WithGitHub(g GitHubConfig) AppConfigOption {
	return func(c *AppConfig) { c.github = g }
}

// WithEndpoint sets the chat completion endpoint.
func WithEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.endpoint = e }
}

// WithExtraction sets the extraction configuration.
func WithExtraction(x ExtractionConfig) AppConfigOption {
	return func(c *AppConfig) { c.extraction = x }
}

// WithOutput sets the output configuration.
func WithOutput(o OutputConfig) AppConfigOption {
	return func(c *AppConfig) { c.output = o }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of the config with the options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
