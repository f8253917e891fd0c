package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

var (
	ErrNoDevice     = errors.New("no device specified")
	ErrNoOutputDir  = errors.New("no output directory specified")
	ErrInvalidOrder = errors.New("invalid execution order")
)

// Config holds all configuration for the application
type Config struct {
	// Suite settings
	TestsDir         string
	GlobalFixture    string
	TestFilePatterns []string
	SuiteName        string
	SuiteDescription string

	// Execution settings
	Shell                    string
	Order                    string
	Trace                    bool
	TeardownAfterFailedSetup bool

	// Output settings
	OutputDir string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Devices          []string
	OutDir           string
	TestsDir         string
	ListTests        bool
	ListKnownDevices bool
	DryRun           bool
	Filter           string
	Order            string
	MatrixSummary    bool
	Debug            bool
	MetricsFile      string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		TestsDir:      builtinTestsDir(),
		GlobalFixture: DefaultGlobalFixture,
		Shell:         DefaultShell,
		Order:         DefaultOrder,
		Trace:         true,
	}
	// Copy default patterns
	cfg.TestFilePatterns = make([]string, len(DefaultTestFilePatterns))
	copy(cfg.TestFilePatterns, DefaultTestFilePatterns)
	return cfg
}

// Load creates a config and applies, in increasing precedence, the suite
// file, the environment (including the tests root .env file) and the flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	// The tests root decides where .env and batrun.yaml are looked up
	if dir := os.Getenv(EnvTestsDir); dir != "" {
		cfg.TestsDir = dir
	}
	if flags.TestsDir != "" {
		cfg.TestsDir = flags.TestsDir
	}

	if err := LoadEnv(cfg.TestsDir); err != nil {
		return nil, err
	}
	// .env may name another tests root only when no flag did
	if dir := os.Getenv(EnvTestsDir); dir != "" && flags.TestsDir == "" {
		cfg.TestsDir = dir
	}

	suite, err := LoadSuiteFile(cfg.TestsDir)
	if err != nil {
		return nil, err
	}
	suite.apply(cfg)

	if shell := os.Getenv(EnvShell); shell != "" {
		cfg.Shell = shell
	}
	if out := os.Getenv(EnvOutDir); out != "" {
		cfg.OutputDir = out
	}

	// Apply flag overrides
	if flags.OutDir != "" {
		cfg.OutputDir = flags.OutDir
	}
	if flags.Order != "" {
		cfg.Order = flags.Order
	}

	return cfg, nil
}

// Validate checks the settings required to run tests. Listing modes need
// neither devices nor an output directory.
func (c *Config) Validate() error {
	if !slices.Contains([]string{OrderDeviceMajor, OrderUnitMajor}, c.Order) {
		return fmt.Errorf("%w: %q (expected %s or %s)", ErrInvalidOrder, c.Order, OrderDeviceMajor, OrderUnitMajor)
	}
	if c.Listing() {
		return nil
	}
	if len(c.Flags.Devices) == 0 {
		return ErrNoDevice
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	return nil
}

// Listing reports whether the command only lists tests or devices
func (c *Config) Listing() bool {
	return c.Flags.ListTests || c.Flags.ListKnownDevices
}

// GetTestsPath returns the tests root as an absolute path when possible
func (c *Config) GetTestsPath() string {
	if abs, err := filepath.Abs(c.TestsDir); err == nil {
		return abs
	}
	return filepath.Clean(c.TestsDir)
}

// GetGlobalFixturePath returns the path to the global fixture file
func (c *Config) GetGlobalFixturePath() string {
	return filepath.Join(c.GetTestsPath(), c.GlobalFixture)
}

// GetOutputRoot returns the output root as an absolute path when possible
func (c *Config) GetOutputRoot() string {
	if abs, err := filepath.Abs(c.OutputDir); err == nil {
		return abs
	}
	return c.OutputDir
}

// builtinTestsDir returns the tests directory shipped next to the executable
func builtinTestsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultTestsDir
	}
	return filepath.Join(filepath.Dir(exe), DefaultTestsDir)
}
