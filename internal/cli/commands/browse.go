package commands

import (
	"github.com/spf13/cobra"

	"batrun/internal/ui"
)

// BrowseCommand opens the log viewer on a run directory
type BrowseCommand struct {
	viewer ui.Viewer
}

// NewBrowseCommand creates a new BrowseCommand
func NewBrowseCommand() *BrowseCommand {
	return &BrowseCommand{viewer: ui.NewLogViewer()}
}

// Execute runs the command
func (bc *BrowseCommand) Execute(cmd *cobra.Command, args []string) error {
	return bc.viewer.View(args[0])
}
