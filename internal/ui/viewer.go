package ui

// Viewer displays the logs of a run in an interactive TUI
type Viewer interface {
	View(runDir string) error
}

var _ Viewer = (*LogViewer)(nil)
