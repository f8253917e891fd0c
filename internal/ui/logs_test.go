package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLog(t *testing.T) {
	runDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(runDir, "d1", "net"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "d1", "net", "test_a.log"),
		[]byte("\x1b[31mred output\x1b[0m [not a tag]\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "setup.log"), nil, 0644))

	content, err := loadLog(runDir, "d1/net/test_a.log")
	require.NoError(t, err)
	assert.NotContains(t, content, "\x1b")
	assert.True(t, strings.HasPrefix(content, "red output [not a tag[]"), content)

	content, err = loadLog(runDir, "setup.log")
	require.NoError(t, err)
	assert.Contains(t, content, "(empty log)")

	_, err = loadLog(runDir, "missing.log")
	assert.Error(t, err)
}

func TestFormatLogStats(t *testing.T) {
	runDir := t.TempDir()

	assert.Equal(t, "[cyan]suite:[white] setup", formatLogStats(runDir, "setup.log"))
	assert.Equal(t,
		"[cyan]device:[white] [yellow]d1[white]  [cyan]test:[white] [yellow]net/ping[white]::[yellow]test_01_ok[white]",
		formatLogStats(runDir, "d1/net/ping/test_01_ok.log"))
}
