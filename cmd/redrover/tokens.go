package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	domainservice "github.com/redrover-dev/redrover/domain/service"
	"github.com/redrover-dev/redrover/infrastructure/tokenizer"
	"github.com/redrover-dev/redrover/internal/config"
)

func tokensCmd() *cobra.Command {
	var (
		model    string
		estimate bool
		ceiling  int
	)

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count the tokens of a file or standard input",
		Long: `Count tokens the same way diffs are measured before extraction.

Reads the named file, or standard input when no file is given. With --ceiling
the command fails when the count reaches the ceiling, matching the rule that
drops oversized diffs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var counter domainservice.TokenCounter = tokenizer.Estimator{}
			if !estimate {
				tk, err := tokenizer.NewTiktoken(model)
				if err != nil {
					return err
				}
				counter = tk
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			n := counter.CountTokens(text)
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
				return err
			}
			if ceiling > 0 && n >= ceiling {
				return fmt.Errorf("%d tokens reaches ceiling %d", n, ceiling)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", config.DefaultTokenizerModel, "Model whose encoding is used")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "Estimate at four characters per token instead of encoding")
	cmd.Flags().IntVar(&ceiling, "ceiling", 0, "Fail when the count reaches this many tokens")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
