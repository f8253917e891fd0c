package cli

import "batrun/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Devices:          f.Devices,
		OutDir:           f.OutDir,
		TestsDir:         f.TestsDir,
		ListTests:        f.ListTests,
		ListKnownDevices: f.ListKnownDevices,
		DryRun:           f.DryRun,
		Filter:           f.Filter,
		Order:            f.Order,
		MatrixSummary:    f.MatrixSummary,
		Debug:            f.Debug,
		MetricsFile:      f.MetricsFile,
	}
}
