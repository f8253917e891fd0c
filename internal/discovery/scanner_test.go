package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir := t.TempDir()

	// Create test files
	testFiles := []string{
		"tests.sh",
		"net/ping.sh",
		"net/dhcp.sh",
		"boot.sh",
		"lib/helpers.txt",
		".git/hooks/pre-commit.sh",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("#!/bin/bash\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	// Symlinked directory, including a loop back to the root
	external := t.TempDir()
	if err := os.WriteFile(filepath.Join(external, "storage.sh"), []byte("#!/bin/bash\n"), 0644); err != nil {
		t.Fatalf("failed to create external file: %v", err)
	}
	if err := os.Symlink(external, filepath.Join(tmpDir, "linked")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}
	if err := os.Symlink(tmpDir, filepath.Join(tmpDir, "net", "loop")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	scanner := NewScanner([]string{"*.sh"}, []string{"tests.sh"})

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "boot.sh"),
			filepath.Join(tmpDir, "linked", "storage.sh"),
			filepath.Join(tmpDir, "net", "dhcp.sh"),
			filepath.Join(tmpDir, "net", "ping.sh"),
		}
		if diff := cmp.Diff(expected, results); diff != "" {
			t.Errorf("unexpected scan result (-want +got):\n%s", diff)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		first, _ := scanner.Scan(tmpDir)
		second, _ := scanner.Scan(tmpDir)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("scans differ (-first +second):\n%s", diff)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "boot.sh"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}

func TestScanner_ScanSiblingAlias(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "net"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "net", "ping.sh"), []byte("#!/bin/bash\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "net"), filepath.Join(tmpDir, "alias")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	results, err := NewScanner([]string{"*.sh"}, nil).Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		filepath.Join(tmpDir, "alias", "ping.sh"),
		filepath.Join(tmpDir, "net", "ping.sh"),
	}
	if diff := cmp.Diff(expected, results); diff != "" {
		t.Errorf("unexpected scan result (-want +got):\n%s", diff)
	}
}
