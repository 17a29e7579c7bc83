package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redrover-dev/redrover/domain/standards"
)

// OutputWriter persists condensed standards in the selected output mode.
type OutputWriter struct {
	log *slog.Logger
}

// NewOutputWriter creates a new OutputWriter.
func NewOutputWriter(log *slog.Logger) *OutputWriter {
	return &OutputWriter{log: log}
}

// Render returns the file content for mode: the condensed text itself, or
// the review prompt embedding it.
func Render(mode standards.OutputMode, condensed string) (string, error) {
	switch mode {
	case standards.OutputStandards:
		return condensed, nil
	case standards.OutputPrompt:
		return ReviewPrompt(condensed), nil
	default:
		return "", fmt.Errorf("render output: unknown mode %q", mode)
	}
}

// Write renders condensed for mode and writes it to path, creating parent
// directories and replacing any existing file.
func (w *OutputWriter) Write(mode standards.OutputMode, path, condensed string) error {
	content, err := Render(mode, condensed)
	if err != nil {
		return err
	}

	if err := writeFile(path, []byte(content)); err != nil {
		return fmt.Errorf("write %s output: %w", mode, err)
	}

	w.log.Info("wrote output", slog.String("mode", mode.String()), slog.String("path", path))
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
