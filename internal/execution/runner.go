package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"batrun/internal/config"
	"batrun/internal/domain"
)

// SkipExitCode is the exit status a test uses to declare itself skipped
const SkipExitCode = 255

// Invocation describes one fixture or test function call
type Invocation struct {
	Sources  []string // Files sourced, in order, before the call
	Function string
	Args     []string
	LogPath  string // Receives stdout, stderr and the trace
}

// Runner invokes a function in an isolated subprocess
type Runner interface {
	// Run returns the exit status of the invocation. An error means the
	// subprocess could not be started at all.
	Run(ctx context.Context, inv Invocation) (int, error)
}

// invokeScript sources the files passed as the first BATRUN_SOURCE_COUNT
// positional parameters and calls BATRUN_FUNCTION with the remaining ones.
const invokeScript = `__batrun_sources=("${@:1:$BATRUN_SOURCE_COUNT}")
shift "$BATRUN_SOURCE_COUNT"
for __batrun_source in "${__batrun_sources[@]}"; do
	source "$__batrun_source"
done
unset __batrun_sources __batrun_source
if [[ $BATRUN_TRACE == 1 ]]; then
	set -x
fi
"$BATRUN_FUNCTION" "$@"
`

// ShellRunner runs invocations with the configured shell
type ShellRunner struct {
	config *config.Config
	logger *slog.Logger
}

// NewShellRunner creates a new ShellRunner
func NewShellRunner(cfg *config.Config, logger *slog.Logger) *ShellRunner {
	return &ShellRunner{
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run executes the invocation with its combined output written to inv.LogPath
func (r *ShellRunner) Run(ctx context.Context, inv Invocation) (int, error) {
	logFile, err := os.Create(inv.LogPath)
	if err != nil {
		return -1, fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"-c", invokeScript, "batrun"}
	args = append(args, inv.Sources...)
	args = append(args, inv.Args...)

	trace := "0"
	if r.config.Trace {
		trace = "1"
	}

	cmd := exec.CommandContext(ctx, r.config.Shell, args...)
	cmd.Env = append(os.Environ(),
		"BATRUN_SOURCE_COUNT="+strconv.Itoa(len(inv.Sources)),
		"BATRUN_FUNCTION="+inv.Function,
		"BATRUN_TRACE="+trace,
	)
	cmd.Dir = r.config.GetTestsPath()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	r.logger.Debug("invoking", "function", inv.Function, "args", inv.Args, "log", inv.LogPath)

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("run %s: %w", r.config.Shell, err)
}

// Classify maps an exit status to an outcome
func Classify(exitCode int) domain.Outcome {
	switch exitCode {
	case 0:
		return domain.OutcomeOK
	case SkipExitCode:
		return domain.OutcomeSkipped
	default:
		return domain.OutcomeError
	}
}
