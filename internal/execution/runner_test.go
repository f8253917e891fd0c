package execution

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batrun/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		exitCode int
		expected domain.Outcome
	}{
		{0, domain.OutcomeOK},
		{1, domain.OutcomeError},
		{2, domain.OutcomeError},
		{127, domain.OutcomeError},
		{254, domain.OutcomeError},
		{255, domain.OutcomeSkipped},
		{-1, domain.OutcomeError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.exitCode), "exit code %d", tt.exitCode)
	}
}

func TestShellRunner_Run(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": `GLOBAL_VALUE="from fixture"`,
		"unit.sh": `check() {
	echo "args: $1 | $2 | $#"
	echo "global: $GLOBAL_VALUE"
	return "$EXIT_WITH"
}
`,
	})
	cfg := testConfig(root)
	runner := NewShellRunner(cfg, discardLogger())
	logDir := t.TempDir()

	for _, code := range []int{0, 1, 255} {
		logPath := filepath.Join(logDir, "check.log")
		t.Setenv("EXIT_WITH", strconv.Itoa(code))

		exitCode, err := runner.Run(context.Background(), Invocation{
			Sources:  []string{filepath.Join(root, "tests.sh"), filepath.Join(root, "unit.sh")},
			Function: "check",
			Args:     []string{"d1", "/tmp/out dir"},
			LogPath:  logPath,
		})
		require.NoError(t, err)
		assert.Equal(t, code, exitCode)

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "args: d1 | /tmp/out dir | 2")
		assert.Contains(t, string(content), "global: from fixture")
		assert.Contains(t, string(content), "+ check d1")
	}
}

func TestShellRunner_NoTrace(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{"unit.sh": "quiet() { echo quiet; }\n"})
	cfg := testConfig(root)
	cfg.Trace = false
	logPath := filepath.Join(t.TempDir(), "quiet.log")

	exitCode, err := NewShellRunner(cfg, discardLogger()).Run(context.Background(), Invocation{
		Sources:  []string{filepath.Join(root, "unit.sh")},
		Function: "quiet",
		Args:     []string{"d1", root},
		LogPath:  logPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "quiet\n", string(content))
}

func TestShellRunner_StartFailures(t *testing.T) {
	root := t.TempDir()

	t.Run("missing shell", func(t *testing.T) {
		cfg := testConfig(root)
		cfg.Shell = filepath.Join(root, "no-such-shell")
		_, err := NewShellRunner(cfg, discardLogger()).Run(context.Background(), Invocation{
			Function: "test_a",
			LogPath:  filepath.Join(root, "test_a.log"),
		})
		assert.Error(t, err)
	})

	t.Run("log file not creatable", func(t *testing.T) {
		_, err := NewShellRunner(testConfig(root), discardLogger()).Run(context.Background(), Invocation{
			Function: "test_a",
			LogPath:  filepath.Join(root, "missing", "test_a.log"),
		})
		assert.Error(t, err)
	})
}
