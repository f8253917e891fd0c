package execution

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batrun/internal/config"
	"batrun/internal/discovery"
	"batrun/internal/domain"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func writeSuite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func testConfig(root string) *config.Config {
	return &config.Config{
		TestsDir:         root,
		GlobalFixture:    config.DefaultGlobalFixture,
		TestFilePatterns: []string{"*.sh"},
		Shell:            "bash",
		Order:            config.OrderDeviceMajor,
		Trace:            true,
	}
}

type driverFixture struct {
	driver   *Driver
	reporter *recordingReporter
	out      string
}

func newDriverFixture(t *testing.T, cfg *config.Config, runner Runner) *driverFixture {
	t.Helper()
	logger := discardLogger()
	clk := fakeclock.NewFakeClock(startedAt)
	reporter := &recordingReporter{}

	scanner := discovery.NewScanner(cfg.TestFilePatterns, []string{cfg.GlobalFixture})
	discoverer := discovery.NewDiscoverer(cfg, scanner, discovery.NewParser(cfg), logger)
	scheduler, err := NewScheduler(cfg.Order)
	require.NoError(t, err)
	engine := NewEngine(cfg, runner, reporter, clk, logger)

	return &driverFixture{
		driver:   NewDriver(discoverer, scheduler, engine, reporter, clk, logger),
		reporter: reporter,
		out:      filepath.Join(t.TempDir(), "out"),
	}
}

func (f *driverFixture) request(root string, devices ...string) Request {
	return Request{TestsRoot: root, Devices: devices, OutputRoot: f.out}
}

const twoTestsUnit = `test_01_ok() {
	echo "checking $1"
}

test_02_fail() {
	echo "failing on $1" >&2
	return 1
}
`

func TestDriver_Run(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": "KNOWN_DEVICES=(d1 d2)\n",
		"unit.sh":  twoTestsUnit,
	})
	cfg := testConfig(root)
	f := newDriverFixture(t, cfg, NewShellRunner(cfg, discardLogger()))

	stats, err := f.driver.Run(context.Background(), f.request(root, "d1", "d2"))
	require.NoError(t, err)

	assert.Equal(t, domain.RunStats{Total: 4, Passed: 2, Failed: 2}, stats)
	require.NotNil(t, f.reporter.summary)
	assert.Equal(t, stats, *f.reporter.summary)

	runDir := filepath.Join(f.out, "20240309140507")
	require.NotNil(t, f.reporter.info)
	assert.Equal(t, runDir, f.reporter.info.RunDir)
	assert.Equal(t, 4, f.reporter.info.Planned)

	for _, device := range []string{"d1", "d2"} {
		okLog, err := os.ReadFile(filepath.Join(runDir, device, "unit", "test_01_ok.log"))
		require.NoError(t, err)
		assert.Contains(t, string(okLog), "checking "+device)

		failLog, err := os.ReadFile(filepath.Join(runDir, device, "unit", "test_02_fail.log"))
		require.NoError(t, err)
		assert.Contains(t, string(failLog), "failing on "+device)
		assert.Contains(t, string(failLog), "+ return 1")
	}
}

func TestDriver_DeclaredSkip(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": "KNOWN_DEVICES=(d1 d2)\n",
		"unit.sh": `test_01_ok() { :; }
test_02_skip() { [[ $1 == d2 ]] && exit 255; return 0; }
`,
	})
	cfg := testConfig(root)
	f := newDriverFixture(t, cfg, NewShellRunner(cfg, discardLogger()))

	stats, err := f.driver.Run(context.Background(), f.request(root, "d1", "d2"))
	require.NoError(t, err)
	assert.Equal(t, domain.RunStats{Total: 4, Passed: 3, Skipped: 1}, stats)
}

func TestDriver_SuiteSetupFailure(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": `KNOWN_DEVICES=(d1)
setup() { echo "setup for $1 in $2"; return 1; }
teardown() { echo "cleaning up"; }
`,
		"unit.sh": twoTestsUnit,
	})
	cfg := testConfig(root)
	f := newDriverFixture(t, cfg, NewShellRunner(cfg, discardLogger()))

	stats, err := f.driver.Run(context.Background(), f.request(root, "d1"))
	require.NoError(t, err)
	assert.Equal(t, domain.RunStats{Total: 2, Skipped: 2}, stats)

	runDir := filepath.Join(f.out, "20240309140507")
	setupLog, err := os.ReadFile(filepath.Join(runDir, "setup.log"))
	require.NoError(t, err)
	assert.Contains(t, string(setupLog), "setup for d1 in "+runDir)

	teardownLog, err := os.ReadFile(filepath.Join(runDir, "teardown.log"))
	require.NoError(t, err)
	assert.Contains(t, string(teardownLog), "cleaning up")

	assert.NoFileExists(t, filepath.Join(runDir, "d1", "unit", "test_01_ok.log"))
}

func TestDriver_DryRun(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": "KNOWN_DEVICES=(d1 d2)\nsetup() { :; }\n",
		"unit.sh":  "setup() { :; }\n" + twoTestsUnit,
	})
	runner := newFakeRunner()
	f := newDriverFixture(t, testConfig(root), runner)

	req := f.request(root, "d1", "d2")
	req.DryRun = true
	stats, err := f.driver.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStats{Total: 4, Skipped: 4}, stats)
	assert.Empty(t, runner.calls)
	assert.True(t, f.reporter.info.DryRun)
	assert.Len(t, f.reporter.progress, 4)
}

func TestDriver_FilterAndUnknownDevice(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh":    "declare -A KNOWN_DEVICES=([d1]=10.0.0.1)\n",
		"unit.sh":     twoTestsUnit,
		"net/ping.sh": "test_ping() { :; }\n",
	})
	runner := newFakeRunner()
	f := newDriverFixture(t, testConfig(root), runner)

	req := f.request(root, "d1", "unknown", "d1")
	req.Filter = "*::test_01*"
	stats, err := f.driver.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStats{Total: 2, Passed: 2}, stats)
	assert.Equal(t, []string{"d1", "unknown"}, f.reporter.info.Devices)
	assert.Equal(t, []string{"unit.sh:test_01_ok@d1", "unit.sh:test_01_ok@unknown"}, runner.called())
}

func TestDriver_ConfigurationErrors(t *testing.T) {
	requireBash(t)

	tests := []struct {
		name  string
		files map[string]string
		err   error
	}{
		{
			name:  "missing global fixture",
			files: map[string]string{"unit.sh": twoTestsUnit},
			err:   discovery.ErrMissingGlobalFixture,
		},
		{
			name:  "missing device table",
			files: map[string]string{"tests.sh": "setup() { :; }\n", "unit.sh": twoTestsUnit},
			err:   discovery.ErrMissingDeviceTable,
		},
		{
			name:  "malformed device table",
			files: map[string]string{"tests.sh": "KNOWN_DEVICES=d1\n", "unit.sh": twoTestsUnit},
			err:   discovery.ErrMalformedDeviceTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeSuite(t, tt.files)
			runner := newFakeRunner()
			f := newDriverFixture(t, testConfig(root), runner)

			_, err := f.driver.Run(context.Background(), f.request(root, "d1"))
			assert.ErrorIs(t, err, tt.err)
			assert.Empty(t, runner.calls)
			assert.NoDirExists(t, f.out)
			assert.Nil(t, f.reporter.summary)
		})
	}
}

func TestDriver_OutputDirFailure(t *testing.T) {
	requireBash(t)
	root := writeSuite(t, map[string]string{
		"tests.sh": "KNOWN_DEVICES=(d1)\n",
		"unit.sh":  twoTestsUnit,
	})
	runner := newFakeRunner()
	f := newDriverFixture(t, testConfig(root), runner)

	require.NoError(t, os.MkdirAll(filepath.Dir(f.out), 0755))
	require.NoError(t, os.WriteFile(f.out, []byte("not a directory"), 0644))

	_, err := f.driver.Run(context.Background(), f.request(root, "d1"))
	assert.Error(t, err)
	assert.Empty(t, runner.calls)
}
