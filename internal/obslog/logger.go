// Package obslog wraps log/slog the way
// accumulate-lite-client-2/liteclient/logging/logger.go does: a small
// Config selecting output/format/level and a Logger embedding *slog.Logger
// so callers get structured, leveled logging with WithFields for
// request-scoped context (container_id, sequence, intent_class) without
// reaching for a third-party logging library the ledger's own code (as
// opposed to its CometBFT/etc. dependencies) never actually imports.
package obslog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Config selects the logger's destination and verbosity.
type Config struct {
	Level      slog.Level
	Format     string // "json" or "text"
	Output     string // "stdout", "stderr", or a file path
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns a sensible production default: info level, JSON
// to stdout, matching how a service under an orchestrator typically wants
// its logs shipped.
func DefaultConfig() Config {
	return Config{
		Level:      slog.LevelInfo,
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Logger embeds *slog.Logger for direct use (l.Info("msg", "k", v)) plus
// the WithFields convenience below.
type Logger struct {
	*slog.Logger
	config Config
}

// New builds a Logger from Config.
func New(cfg Config) (*Logger, error) {
	var output io.Writer
	switch cfg.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("obslog: open log file: %w", err)
		}
		output = f
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), config: cfg}, nil
}

// WithFields returns a Logger with the given key/value pairs attached to
// every subsequent record, for request-scoped logging in the orchestrator
// (container_id, sequence, intent_class, ...).
func (l *Logger) WithFields(kv ...any) *Logger {
	if len(kv) == 0 {
		return l
	}
	return &Logger{Logger: l.Logger.With(kv...), config: l.config}
}
