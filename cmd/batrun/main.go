package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"batrun/internal/cli"
	"batrun/internal/cli/commands"
	"batrun/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "batrun -d DEVICE [-d DEVICE...] -o OUT_DIR",
		Short: "Bash test runner",
		Long: `Run the bash test functions of a tests root against one or more devices.
Every setup, teardown and test function runs in its own shell and logs to its own file.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
