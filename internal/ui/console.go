package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"batrun/internal/domain"
	"batrun/internal/execution"
	"batrun/internal/stats"
)

// ConsoleReporter renders the events of a run on a terminal. Interactive
// consoles get a progress bar, others one line per executed scope.
type ConsoleReporter struct {
	out           io.Writer
	formatter     *Formatter
	interactive   bool
	matrixSummary bool

	bar     *ProgressBar
	results *stats.Aggregator
	counts  domain.RunStats
}

// NewConsoleReporter creates a new ConsoleReporter
func NewConsoleReporter(out io.Writer, interactive, matrixSummary bool) *ConsoleReporter {
	return &ConsoleReporter{
		out:           out,
		formatter:     NewFormatter(out),
		interactive:   interactive,
		matrixSummary: matrixSummary,
		results:       stats.NewAggregator(),
	}
}

var _ execution.Reporter = (*ConsoleReporter)(nil)

func (r *ConsoleReporter) RunStarted(info execution.RunInfo) {
	mode := ""
	if info.DryRun {
		mode = color.YellowString(" (dry run)")
	}
	fmt.Fprintf(r.out, "%s %d test(s) from %d unit(s) on %s%s\n",
		color.CyanString("Running"), info.Planned, info.Units, strings.Join(info.Devices, ", "), mode)
	fmt.Fprintf(r.out, "%s %s\n", color.CyanString("Logs:"), info.RunDir)

	if r.interactive && info.Planned > 0 {
		r.bar = NewProgressBar(info.Planned, r.out)
	}
}

func (r *ConsoleReporter) Progress(index, total int, label string) {
	if r.bar != nil {
		return
	}
	fmt.Fprintf(r.out, "[%d/%d] Running %s", index, total, label)
}

func (r *ConsoleReporter) ScopeFinished(result domain.ScopeResult) {
	if result.Scope.Kind == domain.ScopeTest {
		r.recordTest(result)
		return
	}

	// Fixtures are only worth a line when something went wrong
	if result.Outcome == domain.OutcomeOK && r.bar != nil {
		return
	}
	if result.Outcome == domain.OutcomeSkipped && result.Reason != domain.SkipDeclared && r.bar != nil {
		return
	}
	r.printLine(fmt.Sprintf("%s %s%s", result.Scope.Label(), status(result), details(result)))
}

func (r *ConsoleReporter) recordTest(result domain.ScopeResult) {
	tc := domain.TestCase{UnitID: result.Scope.UnitID, Function: result.Scope.Function}
	r.results.Record(tc, result.Scope.Device, result.Outcome)
	r.counts = r.results.Snapshot()

	if r.bar == nil {
		fmt.Fprintf(r.out, " %s%s\n", status(result), details(result))
		return
	}
	if result.Outcome == domain.OutcomeError {
		r.printLine(fmt.Sprintf("%s %s%s", result.Scope.Label(), status(result), details(result)))
	}
	r.bar.Update(r.counts.Passed, r.counts.Failed, r.counts.Skipped)
}

// printLine writes a full line, above the progress bar when there is one
func (r *ConsoleReporter) printLine(line string) {
	if r.bar != nil {
		r.bar.Clear()
		fmt.Fprintf(r.out, "\r%s\n", line)
		return
	}
	fmt.Fprintln(r.out, line)
}

func (r *ConsoleReporter) Summary(s domain.RunStats, elapsed time.Duration) {
	if r.bar != nil {
		r.bar.Finish()
	}
	fmt.Fprintln(r.out)
	r.formatter.PrintSummary(s, elapsed)

	if r.matrixSummary {
		fmt.Fprintln(r.out)
		r.formatter.PrintMatrix(r.results.Matrix())
	}
}

func status(result domain.ScopeResult) string {
	switch result.Outcome {
	case domain.OutcomeOK:
		return color.GreenString("PASSED")
	case domain.OutcomeError:
		if result.Err != nil {
			return color.RedString("RUNNER_FAILED")
		}
		return color.RedString("FAILED")
	case domain.OutcomeSkipped:
		return color.YellowString("SKIPPED") + fmt.Sprintf(" (reason: %s)", result.Reason)
	default:
		return color.HiBlackString("NOTRUN")
	}
}

func details(result domain.ScopeResult) string {
	switch {
	case result.Err != nil:
		return ": " + result.Err.Error()
	case result.Outcome == domain.OutcomeError:
		return fmt.Sprintf(" (exit status %d, log: %s)", result.ExitCode, result.LogPath)
	default:
		return ""
	}
}
