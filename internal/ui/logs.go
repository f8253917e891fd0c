package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"batrun/internal/storage"
)

// maxLogBytes bounds how much of a log file is shown
const maxLogBytes = 1 << 20

// LogViewer browses the log files of a run directory in an interactive TUI
type LogViewer struct{}

// NewLogViewer creates a new LogViewer
func NewLogViewer() *LogViewer {
	return &LogViewer{}
}

// View lists every log file of runDir with the content of the selected one
func (lv *LogViewer) View(runDir string) error {
	files, err := storage.LogFiles(runDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No log files found in %s", runDir)
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, file := range files {
		list.AddItem(fmt.Sprintf("[yellow]%d.[white] %s", i+1, tview.Escape(file)), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	contentView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	contentContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(contentView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 2, 0, false).
		AddItem(contentContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" %s (%d logs) | Use ↑↓ to navigate, → to scroll the log, ← to go back, [yellow]R[white] to reload, Ctrl+C to exit ",
			tview.Escape(runDir), len(files)))

	updateContent := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(files) {
			return
		}
		statsView.SetText(formatLogStats(runDir, files[index]))
		content, err := loadLog(runDir, files[index])
		if err != nil {
			content = fmt.Sprintf("[red]%s[white]", tview.Escape(err.Error()))
		}
		contentView.SetText(content).ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(contentView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				updateContent()
				return nil
			}
		}
		return event
	})

	contentView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateContent()
	})
	updateContent()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadLog returns the content of a log file ready for a dynamic color text
// view: escape sequences written by the tests are stripped and tview tags escaped.
func loadLog(runDir, rel string) (string, error) {
	f, err := os.Open(filepath.Join(runDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxLogBytes+1))
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	if len(data) == 0 {
		return "[gray](empty log)[white]", nil
	}

	truncated := len(data) > maxLogBytes
	if truncated {
		data = data[:maxLogBytes]
	}
	content := tview.Escape(stripansi.Strip(string(data)))
	if truncated {
		content += fmt.Sprintf("\n[gray]... truncated after %d bytes[white]", maxLogBytes)
	}
	return content, nil
}

// formatLogStats formats the header shown above a log: the scope it belongs to
func formatLogStats(runDir, rel string) string {
	dir, file := filepath.Split(filepath.FromSlash(rel))
	name := strings.TrimSuffix(file, storage.LogExtension)

	var scope string
	if dir == "" {
		scope = "[cyan]suite:[white] " + tview.Escape(name)
	} else {
		parts := strings.SplitN(filepath.ToSlash(strings.TrimSuffix(dir, string(filepath.Separator))), "/", 2)
		unit := ""
		if len(parts) == 2 {
			unit = parts[1]
		}
		scope = fmt.Sprintf("[cyan]device:[white] [yellow]%s[white]  [cyan]test:[white] [yellow]%s[white]::[yellow]%s[white]",
			tview.Escape(parts[0]), tview.Escape(unit), tview.Escape(name))
	}

	if info, err := os.Stat(filepath.Join(runDir, filepath.FromSlash(rel))); err == nil {
		scope += fmt.Sprintf("  [gray](%d bytes, %s)[white]", info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
	}
	return scope
}
