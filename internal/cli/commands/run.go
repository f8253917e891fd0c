package commands

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"batrun/internal/config"
	"batrun/internal/execution"
	"batrun/internal/metrics"
	"batrun/internal/ui"
)

// RunCommand handles the test run
type RunCommand struct {
	config *config.Config
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{config: cfg}
}

// Execute runs every discovered test on every requested device
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(rc.config)
	out := cmd.OutOrStdout()

	reporters := execution.Reporters{
		ui.NewConsoleReporter(out, isInteractive(out), rc.config.Flags.MatrixSummary),
	}
	var collector *metrics.Collector
	if rc.config.Flags.MetricsFile != "" {
		collector = metrics.NewCollector()
		reporters = append(reporters, collector)
	}

	driver, err := newDriver(rc.config, reporters, logger)
	if err != nil {
		return err
	}

	_, err = driver.Run(commandContext(cmd), execution.Request{
		TestsRoot:  rc.config.GetTestsPath(),
		Devices:    rc.config.Flags.Devices,
		OutputRoot: rc.config.GetOutputRoot(),
		DryRun:     rc.config.Flags.DryRun,
		Filter:     rc.config.Flags.Filter,
	})
	if err != nil {
		return err
	}

	// The run completed: a metrics failure does not change the exit status
	if collector != nil {
		if err := collector.WriteTextfile(rc.config.Flags.MetricsFile); err != nil {
			logger.Error("cannot write metrics", "file", rc.config.Flags.MetricsFile, "error", err)
		}
	}
	return nil
}

func isInteractive(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
