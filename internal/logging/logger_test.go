package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestConsoleHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	logger.With("component", "Engine").Warn("file setup failed", "unit", "net/ping", "log", "/out/my run/setup.log")

	line := buf.String()
	assert.Contains(t, line, "batrun[")
	assert.Contains(t, line, "]: [warn] engine: file setup failed")
	assert.Contains(t, line, "unit=net/ping")
	assert.Contains(t, line, `log="/out/my run/setup.log"`)
	assert.NotContains(t, line, "component=")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestConsoleHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	logger = New(Config{Level: slog.LevelDebug, Output: &buf})
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "[debug] shown")
}

func TestConsoleHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	logger.WithGroup("run").With("id", "42").Info("started", "tests", 4)

	assert.Contains(t, buf.String(), "run.id=42 run.tests=4")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
