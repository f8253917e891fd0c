package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SuiteFile is the optional batrun.yaml found in the tests root
type SuiteFile struct {
	Name                     string   `yaml:"name"`
	Description              string   `yaml:"description"`
	GlobalFixture            string   `yaml:"global-fixture"`
	TestFilePatterns         []string `yaml:"test-file-patterns"`
	Shell                    string   `yaml:"shell"`
	Order                    string   `yaml:"order"`
	TeardownAfterFailedSetup *bool    `yaml:"teardown-after-failed-setup"`
	Trace                    *bool    `yaml:"trace"`
}

// LoadSuiteFile reads batrun.yaml from dir. A missing file yields an empty SuiteFile.
func LoadSuiteFile(dir string) (*SuiteFile, error) {
	path := filepath.Join(dir, SuiteFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &SuiteFile{}, nil
		}
		return nil, fmt.Errorf("read suite file %s: %w", path, err)
	}

	var suite SuiteFile
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse suite file %s: %w", path, err)
	}
	if suite.GlobalFixture != "" && filepath.IsAbs(suite.GlobalFixture) {
		return nil, fmt.Errorf("suite file %s: global-fixture must be relative to the tests root", path)
	}
	for _, pattern := range suite.TestFilePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("suite file %s: bad test file pattern %q: %w", path, pattern, err)
		}
	}
	return &suite, nil
}

func (s *SuiteFile) apply(cfg *Config) {
	cfg.SuiteName = s.Name
	cfg.SuiteDescription = s.Description
	if s.GlobalFixture != "" {
		cfg.GlobalFixture = s.GlobalFixture
	}
	if len(s.TestFilePatterns) > 0 {
		cfg.TestFilePatterns = s.TestFilePatterns
	}
	if s.Shell != "" {
		cfg.Shell = s.Shell
	}
	if s.Order != "" {
		cfg.Order = s.Order
	}
	if s.TeardownAfterFailedSetup != nil {
		cfg.TeardownAfterFailedSetup = *s.TeardownAfterFailedSetup
	}
	if s.Trace != nil {
		cfg.Trace = *s.Trace
	}
}
