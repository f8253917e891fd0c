package commands

import (
	"context"
	"log/slog"

	"code.cloudfoundry.org/clock"
	"github.com/spf13/cobra"

	"batrun/internal/cli"
	"batrun/internal/config"
	"batrun/internal/discovery"
	"batrun/internal/execution"
	"batrun/internal/logging"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Devices *DevicesCommand
	Browse  *BrowseCommand
}

// NewCommands creates all commands. cfg is filled in once the flags are parsed.
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{
		Run:     NewRunCommand(cfg),
		List:    NewListCommand(cfg),
		Devices: NewDevicesCommand(cfg),
		Browse:  NewBrowseCommand(),
	}
}

// Register registers all commands with cobra. The root command runs the
// tests unless one of the listing flags is given.
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.Args = cobra.NoArgs
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		*cfg = *loaded
		return cfg.Validate()
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !cfg.Listing() {
			return c.Run.Execute(cmd, args)
		}
		if cfg.Flags.ListKnownDevices {
			if err := c.Devices.Execute(cmd, args); err != nil {
				return err
			}
		}
		if cfg.Flags.ListTests {
			return c.List.Execute(cmd, args)
		}
		return nil
	}

	rootCmd.Flags().StringArrayVarP(&flags.Devices, "device", "d", nil, "Device to run the tests on (repeatable, at least one required)")
	rootCmd.Flags().StringVarP(&flags.OutDir, "out-dir", "o", "", "Directory receiving the logs of every run (required)")
	rootCmd.Flags().StringVar(&flags.TestsDir, "tests-dir", "", "Tests root (defaults to the tests directory shipped with batrun)")
	rootCmd.Flags().BoolVarP(&flags.ListTests, "list-tests", "l", false, "List the tests of the tests root and exit")
	rootCmd.Flags().BoolVar(&flags.ListKnownDevices, "list-known-devices", false, "List the devices declared by the global fixture and exit")
	rootCmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Go through every test without executing anything")
	rootCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Only run tests whose identity matches the pattern (e.g. 'net/*::test_ping' or '*dhcp*')")
	rootCmd.Flags().StringVar(&flags.Order, "order", "", "Execution order: device-major or unit-major (default device-major)")
	rootCmd.Flags().BoolVarP(&flags.MatrixSummary, "matrix-summary", "m", false, "Print a test by device result matrix after the run")
	rootCmd.Flags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write run metrics to this file in the prometheus text format")

	browseCmd := &cobra.Command{
		Use:   "browse RUN_DIR",
		Short: "Browse the logs of a run interactively",
		Long:  "Display every log file of a run directory in an interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  c.Browse.Execute,
	}
	rootCmd.AddCommand(browseCmd)
}

// newDiscoverer wires discovery for the loaded configuration
func newDiscoverer(cfg *config.Config, logger *slog.Logger) *discovery.Discoverer {
	scanner := discovery.NewScanner(cfg.TestFilePatterns, []string{cfg.GlobalFixture})
	return discovery.NewDiscoverer(cfg, scanner, discovery.NewParser(cfg), logger)
}

// newDriver wires a complete run for the loaded configuration
func newDriver(cfg *config.Config, reporter execution.Reporter, logger *slog.Logger) (*execution.Driver, error) {
	scheduler, err := execution.NewScheduler(cfg.Order)
	if err != nil {
		return nil, err
	}
	clk := clock.NewClock()
	runner := execution.NewShellRunner(cfg, logger)
	engine := execution.NewEngine(cfg, runner, reporter, clk, logger)
	return execution.NewDriver(newDiscoverer(cfg, logger), scheduler, engine, reporter, clk, logger), nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.ForDebug(cfg.Flags.Debug)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
