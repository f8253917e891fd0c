package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"batrun/internal/config"
	"batrun/internal/discovery"
	"batrun/internal/ui"
)

// ListCommand lists the tests of the tests root
type ListCommand struct {
	config *config.Config
	filter *discovery.Filter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config) *ListCommand {
	return &ListCommand{
		config: cfg,
		filter: discovery.NewFilter(),
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	discoverer := newDiscoverer(lc.config, newLogger(lc.config))
	// An unusable device table is a configuration error in every mode
	if _, err := discoverer.ListDevices(commandContext(cmd), lc.config.GetTestsPath()); err != nil {
		return err
	}

	suite, err := discoverer.Discover(commandContext(cmd), lc.config.GetTestsPath())
	if err != nil {
		return err
	}

	suite.Units = lc.filter.FilterUnits(suite.Units, lc.config.Flags.Filter)
	if len(suite.Units) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No tests found")
		return nil
	}

	ui.NewFormatter(cmd.OutOrStdout()).PrintTestList(suite, true)
	return nil
}

// DevicesCommand lists the devices declared by the global fixture
type DevicesCommand struct {
	config *config.Config
}

// NewDevicesCommand creates a new DevicesCommand
func NewDevicesCommand(cfg *config.Config) *DevicesCommand {
	return &DevicesCommand{config: cfg}
}

// Execute runs the command
func (dc *DevicesCommand) Execute(cmd *cobra.Command, args []string) error {
	discoverer := newDiscoverer(dc.config, newLogger(dc.config))
	devices, err := discoverer.ListDevices(commandContext(cmd), dc.config.GetTestsPath())
	if err != nil {
		return err
	}

	ui.NewFormatter(cmd.OutOrStdout()).PrintDevices(dc.config.GetGlobalFixturePath(), devices)
	return nil
}
