package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redrover-dev/redrover/application/service"
	"github.com/redrover-dev/redrover/domain/standards"
	"github.com/redrover-dev/redrover/infrastructure/github"
	"github.com/redrover-dev/redrover/infrastructure/provider"
	"github.com/redrover-dev/redrover/infrastructure/tokenizer"
	"github.com/redrover-dev/redrover/internal/config"
	"github.com/redrover-dev/redrover/internal/log"
	"github.com/redrover-dev/redrover/internal/retry"
)

const envHelp = `
Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  GITHUB_TOKEN                 Access token for the GitHub API (required)
  GITHUB_OWNER                 Repository owner (required unless GITHUB_REPO is owner/name)
  GITHUB_REPO                  Repository name or owner/name (required)
  GITHUB_API_URL               API root (default: https://api.github.com/)
  GITHUB_TIMEOUT               GitHub request timeout in seconds (default: 60)
  MAX_PULL_REQUESTS            Closed pull requests to read (default: 10)
  DIFF_TOKEN_CEILING           Diffs at or above this many tokens are skipped (default: 30000)

  OPENAI_API_KEY               API key for the chat model (required)
  OPENAI_BASE_URL              Base URL of an OpenAI compatible API
  OPENAI_MODEL                 Chat model (default: gpt-4)
  OPENAI_TIMEOUT               Chat request timeout in seconds (default: 60)
  TOKENIZER_MODEL              Model whose encoding measures text (default: gpt-3.5-turbo)
  CONTEXT_WINDOW               Model context window in tokens (default: 8192)
  COMPLETION_RESERVE           Tokens kept for each completion (default: 400)
  PATTERN_TEMPERATURE          Temperature of per-segment calls (default: 0.7)
  CONDENSE_TEMPERATURE         Temperature of the condensation call (default: 0.1)
  MAX_RETRIES                  Retries of failed API calls (default: 0)
  INITIAL_DELAY                First retry delay in seconds (default: 2)
  BACKOFF_FACTOR               Retry delay multiplier (default: 2)

  STANDARDS_FILE               Output of the standards command (default: red_rover_standards.txt)
  PROMPT_FILE                  Output of the prompt command (default: red_rover/custom_prompt.txt)
  REPORT_FILE                  Optional YAML run report
  HTTP_CACHE_DIR               Optional on-disk cache of chat completions
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)`

type runMode struct {
	mode  standards.OutputMode
	short string
	long  string
}

var (
	modeStandards = runMode{
		mode:  standards.OutputStandards,
		short: "Write condensed coding standards to a text file",
		long:  "Extract design patterns from recent pull requests and write the condensed standards verbatim.",
	}
	modePrompt = runMode{
		mode:  standards.OutputPrompt,
		short: "Write a code review prompt embedding the condensed standards",
		long:  "Extract design patterns from recent pull requests and embed the condensed standards in the review prompt template.",
	}
)

type runOptions struct {
	envFile string
	output  string
	repo    string
	report  string
	maxPRs  int
	ceiling int
}

func runCmd(m runMode) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   m.mode.String(),
		Short: m.short,
		Long:  m.long + "\n" + envHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStandards(ctx, cmd, m.mode, opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: STANDARDS_FILE or PROMPT_FILE)")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository as owner/name (default: GITHUB_OWNER/GITHUB_REPO)")
	cmd.Flags().StringVar(&opts.report, "report", "", "Write a YAML run report to this path")
	cmd.Flags().IntVarP(&opts.maxPRs, "max-prs", "n", 0, "Closed pull requests to read (default: MAX_PULL_REQUESTS)")
	cmd.Flags().IntVar(&opts.ceiling, "ceiling", 0, "Diff token ceiling (default: DIFF_TOKEN_CEILING)")

	return cmd
}

func runStandards(ctx context.Context, cmd *cobra.Command, mode standards.OutputMode, opts runOptions) error {
	cfg, err := loadConfig(opts.envFile)
	if err != nil {
		return err
	}

	cfg = applyRunOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx = log.WithRunID(ctx, runID)
	logger := log.NewLoggerWithWriter(cmd.ErrOrStderr(), cfg.LogFormat(), cfg.LogLevel()).WithContext(ctx)
	logger.SetDefault()
	slogger := logger.Slog()

	counter, err := tokenizer.NewTiktoken(cfg.Extraction().TokenizerModel())
	if err != nil {
		return fmt.Errorf("create tokenizer: %w", err)
	}

	endpoint := cfg.Endpoint()
	policy := retry.Policy{
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
	}

	gh := cfg.GitHub()
	source, err := github.NewClient(gh.Token(), &http.Client{Timeout: gh.Timeout()},
		github.WithBaseURL(gh.APIURL()),
		github.WithRetry(policy),
	)
	if err != nil {
		return fmt.Errorf("create github client: %w", err)
	}

	llm := provider.NewOpenAIProviderFromConfig(provider.OpenAIConfig{
		APIKey:        endpoint.APIKey(),
		BaseURL:       endpoint.BaseURL(),
		ChatModel:     endpoint.Model(),
		Timeout:       endpoint.Timeout(),
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
		CacheDir:      cfg.HTTPCacheDir(),
	})

	extraction := cfg.Extraction()
	pipeline := service.NewPipeline(
		service.NewDiffCollector(source, counter, slogger),
		service.NewPatternExtractor(llm, counter, slogger).
			WithContextWindow(extraction.ContextWindow()).
			WithCompletionReserve(extraction.CompletionReserve()).
			WithPatternTemperature(extraction.PatternTemperature()).
			WithCondenseTemperature(extraction.CondenseTemperature()),
		service.NewOutputWriter(slogger),
		slogger,
	)

	slogger.Info("starting redrover",
		slog.String("version", version),
		slog.String("chat_model", llm.Model()),
		slog.String("tokenizer_model", counter.Model()),
	)

	result, err := pipeline.Run(ctx, service.RunRequest{
		RunID:           runID,
		Owner:           gh.Owner(),
		Repo:            gh.Repo(),
		MaxPullRequests: gh.MaxPullRequests(),
		TokenCeiling:    gh.DiffTokenCeiling(),
		Mode:            mode,
		OutputPath:      outputPath(cfg, mode),
		ReportPath:      cfg.Output().ReportFile(),
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Extraction.Condensed())
	return err
}

// applyRunOverrides applies command line flags over the loaded config.
func applyRunOverrides(cfg config.AppConfig, opts runOptions) config.AppConfig {
	var ghOpts []config.GitHubOption
	if opts.repo != "" {
		owner := cfg.GitHub().Owner()
		if strings.Contains(opts.repo, "/") {
			owner = ""
		}
		ghOpts = append(ghOpts, config.WithRepository(owner, opts.repo))
	}
	if opts.maxPRs > 0 {
		ghOpts = append(ghOpts, config.WithMaxPullRequests(opts.maxPRs))
	}
	if opts.ceiling > 0 {
		ghOpts = append(ghOpts, config.WithDiffTokenCeiling(opts.ceiling))
	}
	if len(ghOpts) > 0 {
		cfg = cfg.Apply(config.WithGitHub(cfg.GitHub().With(ghOpts...)))
	}

	out := cfg.Output()
	if opts.report != "" {
		out = out.WithReportFile(opts.report)
	}
	if opts.output != "" {
		out = out.WithStandardsFile(opts.output).WithPromptFile(opts.output)
	}
	return cfg.Apply(config.WithOutput(out))
}

func outputPath(cfg config.AppConfig, mode standards.OutputMode) string {
	if mode == standards.OutputPrompt {
		return cfg.Output().PromptFile()
	}
	return cfg.Output().StandardsFile()
}
