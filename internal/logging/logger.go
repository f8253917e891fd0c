// Package logging provides the diagnostic logger of batrun.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// ProcessName prefixes every log line
const ProcessName = "batrun"

// Config holds logger configuration
type Config struct {
	Level  slog.Level
	Output io.Writer
}

// DefaultConfig returns info level logging to stderr
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Output: os.Stderr,
	}
}

// New creates a logger writing through a ConsoleHandler
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return slog.New(NewConsoleHandler(cfg.Output, &slog.HandlerOptions{Level: cfg.Level}))
}

// ForDebug returns the default logger, at debug level when debug is set
func ForDebug(debug bool) *slog.Logger {
	cfg := DefaultConfig()
	if debug {
		cfg.Level = slog.LevelDebug
	}
	return New(cfg)
}

// Discard returns a logger dropping every record
func Discard() *slog.Logger {
	return New(Config{Level: slog.LevelError + 1, Output: io.Discard})
}
