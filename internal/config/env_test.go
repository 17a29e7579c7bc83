package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "", cfg.HTTPCacheDir)
	assert.Equal(t, "", cfg.GitHub.Token)
	assert.Equal(t, "", cfg.GitHub.Owner)
	assert.Equal(t, "", cfg.GitHub.Repo)
	assert.Equal(t, "https://api.github.com/", cfg.GitHub.APIURL)
	assert.Equal(t, "", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4", cfg.OpenAI.Model)
	assert.Equal(t, 60.0, cfg.OpenAI.Timeout)
	assert.Equal(t, 10, cfg.MaxPullRequests)
	assert.Equal(t, 30000, cfg.DiffTokenCeiling)
	assert.Equal(t, "gpt-3.5-turbo", cfg.TokenizerModel)
	assert.Equal(t, 8192, cfg.ContextWindow)
	assert.Equal(t, 400, cfg.CompletionReserve)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, "red_rover_standards.txt", cfg.StandardsFile)
	assert.Equal(t, "red_rover/custom_prompt.txt", cfg.PromptFile)
	assert.Equal(t, "", cfg.ReportFile)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals, so this keeps them in sync with config.go.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultGitHubAPIURL, cfg.GitHub.APIURL)
	assert.Equal(t, DefaultChatModel, cfg.OpenAI.Model)
	assert.Equal(t, DefaultTimeout.Seconds(), cfg.OpenAI.Timeout)
	assert.Equal(t, DefaultMaxPullRequests, cfg.MaxPullRequests)
	assert.Equal(t, DefaultDiffTokenCeiling, cfg.DiffTokenCeiling)
	assert.Equal(t, DefaultTokenizerModel, cfg.TokenizerModel)
	assert.Equal(t, DefaultContextWindow, cfg.ContextWindow)
	assert.Equal(t, DefaultCompletionReserve, cfg.CompletionReserve)
	assert.Equal(t, DefaultPatternTemperature, cfg.PatternTemperature)
	assert.Equal(t, DefaultCondenseTemperature, cfg.CondenseTemperature)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultInitialDelay.Seconds(), cfg.InitialDelay)
	assert.Equal(t, DefaultBackoffFactor, cfg.BackoffFactor)
	assert.Equal(t, DefaultStandardsFile, cfg.StandardsFile)
	assert.Equal(t, DefaultPromptFile, cfg.PromptFile)
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_OWNER", "acme")
	t.Setenv("GITHUB_REPO", "widgets")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("MAX_PULL_REQUESTS", "25")
	t.Setenv("DIFF_TOKEN_CEILING", "12000")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "widgets", cfg.GitHub.Repo)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 25, cfg.MaxPullRequests)
	assert.Equal(t, 12000, cfg.DiffTokenCeiling)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		LogLevel:            "DEBUG",
		LogFormat:           "json",
		HTTPCacheDir:        "/tmp/cache",
		GitHub:              GitHubEnv{Token: "tok", Owner: "acme", Repo: "widgets", APIURL: "https://ghe.example.com/api/v3"},
		OpenAI:              OpenAIEnv{APIKey: "sk", BaseURL: "http://localhost:4000/v1", Model: "gpt-4", Timeout: 30},
		MaxPullRequests:     5,
		DiffTokenCeiling:    1000,
		TokenizerModel:      "gpt-4",
		ContextWindow:       4096,
		CompletionReserve:   200,
		PatternTemperature:  0.2,
		CondenseTemperature: 0.0,
		MaxRetries:          3,
		InitialDelay:        0.5,
		BackoffFactor:       3,
		StandardsFile:       "out/standards.txt",
		PromptFile:          "out/prompt.txt",
		ReportFile:          "out/report.yaml",
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "/tmp/cache", cfg.HTTPCacheDir())

	gh := cfg.GitHub()
	assert.Equal(t, "tok", gh.Token())
	assert.Equal(t, "acme/widgets", gh.Slug())
	assert.Equal(t, "https://ghe.example.com/api/v3/", gh.APIURL())
	assert.Equal(t, 5, gh.MaxPullRequests())
	assert.Equal(t, 1000, gh.DiffTokenCeiling())

	ep := cfg.Endpoint()
	assert.Equal(t, "sk", ep.APIKey())
	assert.Equal(t, "http://localhost:4000/v1", ep.BaseURL())
	assert.Equal(t, 30*time.Second, ep.Timeout())
	assert.Equal(t, 3, ep.MaxRetries())
	assert.Equal(t, 500*time.Millisecond, ep.InitialDelay())
	assert.Equal(t, 3.0, ep.BackoffFactor())

	x := cfg.Extraction()
	assert.Equal(t, "gpt-4", x.TokenizerModel())
	assert.Equal(t, 4096, x.ContextWindow())
	assert.Equal(t, 200, x.CompletionReserve())
	assert.Equal(t, 0.2, x.PatternTemperature())
	assert.Equal(t, 0.0, x.CondenseTemperature())

	out := cfg.Output()
	assert.Equal(t, "out/standards.txt", out.StandardsFile())
	assert.Equal(t, "out/prompt.txt", out.PromptFile())
	assert.Equal(t, "out/report.yaml", out.ReportFile())
}

func TestEnvConfig_ToAppConfig_RepoSlug(t *testing.T) {
	env := EnvConfig{GitHub: GitHubEnv{Repo: "acme/widgets"}}

	gh := env.ToAppConfig().GitHub()

	assert.Equal(t, "acme", gh.Owner())
	assert.Equal(t, "widgets", gh.Repo())
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input string
		want  LogFormat
	}{
		{"json", LogFormatJSON},
		{"JSON", LogFormatJSON},
		{"pretty", LogFormatPretty},
		{"", LogFormatPretty},
		{"unknown", LogFormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogFormat(tt.input))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `GITHUB_TOKEN=from-dotenv
LOG_LEVEL=DEBUG
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)

	require.NoError(t, LoadDotEnv(envFile))

	assert.Equal(t, "from-dotenv", os.Getenv("GITHUB_TOKEN"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GITHUB_OWNER=dotenv\n"), 0o644))

	clearEnvVars(t)
	t.Setenv("GITHUB_OWNER", "shell")

	require.NoError(t, LoadDotEnv(envFile))

	assert.Equal(t, "shell", os.Getenv("GITHUB_OWNER"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `GITHUB_TOKEN=tok
GITHUB_REPO=acme/widgets
OPENAI_API_KEY=sk
LOG_LEVEL=WARN
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.Equal(t, "acme", cfg.GitHub().Owner())
	assert.Equal(t, "widgets", cfg.GitHub().Repo())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_GitHubTimeout(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GITHUB_TIMEOUT", "15")
	t.Setenv("OPENAI_TIMEOUT", "90")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.GitHub().Timeout())
	assert.Equal(t, 90*time.Second, cfg.Endpoint().Timeout())
}

func TestLoadConfig_RepositorySlugWithOwner(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_OWNER", "acme")
	t.Setenv("GITHUB_REPO", "acme/widgets")
	t.Setenv("OPENAI_API_KEY", "sk")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "acme/widgets", cfg.GitHub().Slug())
	assert.NoError(t, cfg.Validate())

	t.Setenv("GITHUB_OWNER", "other")
	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingConfig))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "GITHUB_OWNER")
	assert.Contains(t, err.Error(), "GITHUB_REPO")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

// clearEnvVars unsets every variable the loader reads and restores the
// previous values when the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"LOG_LEVEL",
		"LOG_FORMAT",
		"HTTP_CACHE_DIR",
		"GITHUB_TOKEN",
		"GITHUB_OWNER",
		"GITHUB_REPO",
		"GITHUB_API_URL",
		"GITHUB_TIMEOUT",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"OPENAI_MODEL",
		"OPENAI_TIMEOUT",
		"MAX_PULL_REQUESTS",
		"DIFF_TOKEN_CEILING",
		"TOKENIZER_MODEL",
		"CONTEXT_WINDOW",
		"COMPLETION_RESERVE",
		"PATTERN_TEMPERATURE",
		"CONDENSE_TEMPERATURE",
		"MAX_RETRIES",
		"INITIAL_DELAY",
		"BACKOFF_FACTOR",
		"STANDARDS_FILE",
		"PROMPT_FILE",
		"REPORT_FILE",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
