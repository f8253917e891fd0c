// Package storage lays out the output tree of a run: one timestamped run
// directory holding the suite fixture logs and one directory per
// (device, unit) pair holding the file fixture and test logs.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RunDirTimeFormat names run directories after the run start time
const RunDirTimeFormat = "20060102150405"

// LogExtension is appended to every scope log name
const LogExtension = ".log"

// Layout computes the paths of a run's output tree
type Layout struct {
	outputRoot string
	runDir     string
}

// NewLayout returns the layout of a run started at startedAt under outputRoot
func NewLayout(outputRoot string, startedAt time.Time) *Layout {
	return &Layout{
		outputRoot: outputRoot,
		runDir:     filepath.Join(outputRoot, startedAt.Format(RunDirTimeFormat)),
	}
}

// OutputRoot returns the directory run directories are created in
func (l *Layout) OutputRoot() string {
	return l.outputRoot
}

// RunDir returns the run directory
func (l *Layout) RunDir() string {
	return l.runDir
}

// Prepare creates the run directory. When a directory with the same name
// already exists a numeric suffix is appended so runs never share a tree.
func (l *Layout) Prepare() error {
	if err := os.MkdirAll(l.outputRoot, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := l.runDir
	for i := 1; ; i++ {
		err := os.Mkdir(l.runDir, 0755)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create run dir: %w", err)
		}
		l.runDir = base + "-" + strconv.Itoa(i)
	}
}

// PairDir returns the directory of a (device, unit) pair
func (l *Layout) PairDir(device, unitID string) string {
	return filepath.Join(l.runDir, SanitizeLabel(device), filepath.FromSlash(unitID))
}

// PreparePair creates the directory of a (device, unit) pair
func (l *Layout) PreparePair(device, unitID string) (string, error) {
	dir := l.PairDir(device, unitID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir for %s on %s: %w", unitID, device, err)
	}
	return dir, nil
}

// SuiteLog returns the log path of a suite fixture
func (l *Layout) SuiteLog(name string) string {
	return filepath.Join(l.runDir, name+LogExtension)
}

// ScopeLog returns the log path of a file fixture or test of a (device, unit) pair
func (l *Layout) ScopeLog(device, unitID, name string) string {
	return filepath.Join(l.PairDir(device, unitID), name+LogExtension)
}

// SanitizeLabel makes a device label usable as a single path element.
// Path separators, NUL and '%' are percent-encoded so distinct labels never
// share a directory; "" becomes "%" and dot-only names are fully encoded.
func SanitizeLabel(label string) string {
	switch label {
	case "":
		return "%"
	case ".", "..":
		return strings.Repeat("%2E", len(label))
	}

	var b strings.Builder
	for _, r := range label {
		switch r {
		case '%', '/', '\\', 0:
			fmt.Fprintf(&b, "%%%02X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LogFiles returns the log files under runDir relative to it, sorted
func LogFiles(runDir string) ([]string, error) {
	info, err := os.Stat(runDir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", runDir)
	}

	var files []string
	err = filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != LogExtension {
			return nil
		}
		rel, err := filepath.Rel(runDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk run dir: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
