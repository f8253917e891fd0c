package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner scans for test unit files in a directory
type Scanner struct {
	patterns []string
	exclude  map[string]bool
}

// NewScanner creates a new Scanner matching file names against patterns.
// exclude holds paths relative to the scanned root that are never returned.
func NewScanner(patterns []string, exclude []string) *Scanner {
	excludeMap := make(map[string]bool)
	for _, path := range exclude {
		excludeMap[filepath.Clean(path)] = true
	}
	return &Scanner{patterns: patterns, exclude: excludeMap}
}

// Scan finds all test unit files under root, following symbolic links,
// sorted lexicographically by path.
func (s *Scanner) Scan(root string) ([]string, error) {
	var testFiles []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("tests path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tests path is not a directory: %s", root)
	}

	ancestors := make(map[string]bool)
	if err := s.walk(root, root, ancestors, &testFiles); err != nil {
		return nil, err
	}

	sort.Strings(testFiles)
	return testFiles, nil
}

// walk descends into dir. ancestors holds the resolved directories of the
// current path only, so a link back up the tree stops the descent while two
// links to the same sibling are both listed.
func (s *Scanner) walk(root, dir string, ancestors map[string]bool, testFiles *[]string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	if ancestors[resolved] {
		return nil
	}
	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		// os.Stat follows symlinks; dangling links are ignored
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if err := s.walk(root, path, ancestors, testFiles); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() || !s.matches(name) {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if s.exclude[rel] {
			continue
		}
		*testFiles = append(*testFiles, path)
	}

	return nil
}

func (s *Scanner) matches(name string) bool {
	for _, pattern := range s.patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
