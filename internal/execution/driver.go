package execution

import (
	"context"
	"fmt"
	"log/slog"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"

	"batrun/internal/discovery"
	"batrun/internal/domain"
	"batrun/internal/storage"
)

// Request describes one run
type Request struct {
	TestsRoot  string
	Devices    []string
	OutputRoot string
	DryRun     bool
	Filter     string // Wildcard pattern on "<unitId>::<function>", empty runs everything
}

// Driver composes discovery, scheduling and the engine into a complete run
type Driver struct {
	discoverer *discovery.Discoverer
	filter     *discovery.Filter
	scheduler  Scheduler
	engine     *Engine
	reporter   Reporter
	clock      clock.Clock
	logger     *slog.Logger
}

// NewDriver creates a new Driver
func NewDriver(discoverer *discovery.Discoverer, scheduler Scheduler, engine *Engine, reporter Reporter, clk clock.Clock, logger *slog.Logger) *Driver {
	return &Driver{
		discoverer: discoverer,
		filter:     discovery.NewFilter(),
		scheduler:  scheduler,
		engine:     engine,
		reporter:   reporter,
		clock:      clk,
		logger:     logger.With("component", "driver"),
	}
}

// Run executes every discovered test on every requested device and returns
// the final statistics. Errors are configuration errors raised before any
// test runs, or a failure to create an output directory.
func (d *Driver) Run(ctx context.Context, req Request) (domain.RunStats, error) {
	devices, err := d.resolveDevices(ctx, req)
	if err != nil {
		return domain.RunStats{}, err
	}

	suite, err := d.discoverer.Discover(ctx, req.TestsRoot)
	if err != nil {
		return domain.RunStats{}, err
	}
	if req.Filter != "" {
		suite.Units = d.filter.FilterUnits(suite.Units, req.Filter)
		d.logger.Debug("filtered units", "pattern", req.Filter, "units", len(suite.Units))
	}

	startedAt := d.clock.Now()
	layout := storage.NewLayout(req.OutputRoot, startedAt)
	if err := layout.Prepare(); err != nil {
		return domain.RunStats{}, err
	}

	run := NewRun(uuid.NewString(), layout, suite, devices)
	d.logger.Info("starting run", "id", run.ID, "dir", layout.RunDir(), "units", len(suite.Units),
		"devices", len(devices), "tests", run.Planned, "dry_run", req.DryRun)

	d.reporter.RunStarted(RunInfo{
		ID:        run.ID,
		RunDir:    layout.RunDir(),
		Devices:   domain.Labels(devices),
		Units:     len(suite.Units),
		Planned:   run.Planned,
		DryRun:    req.DryRun,
		StartedAt: startedAt,
	})

	ambient := domain.Run
	if req.DryRun {
		ambient = domain.Skip(domain.SkipDryRun)
	}

	_, state := d.engine.RunSuiteSetup(ctx, run, ambient)

	for _, pair := range d.scheduler.Plan(suite.Units, devices) {
		dir, err := layout.PreparePair(pair.Device.Label, pair.Unit.ID)
		if err != nil {
			d.engine.RunSuiteTeardown(ctx, run, ambient)
			return run.Stats.Snapshot(), err
		}
		d.engine.RunUnit(ctx, run, pair.Unit, pair.Device, dir, state)
	}

	// Teardown runs even after a failed setup
	d.engine.RunSuiteTeardown(ctx, run, ambient)

	stats := run.Stats.Snapshot()
	d.reporter.Summary(stats, d.clock.Since(startedAt))

	if !stats.Consistent() || stats.Total != run.Planned {
		return stats, fmt.Errorf("inconsistent statistics %+v for %d planned tests", stats, run.Planned)
	}
	return stats, nil
}

// resolveDevices looks the requested labels up in the global fixture's
// device table. Unknown labels are kept and only reported.
func (d *Driver) resolveDevices(ctx context.Context, req Request) ([]domain.Device, error) {
	known, err := d.discoverer.ListDevices(ctx, req.TestsRoot)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(known))
	for _, device := range known {
		values[device.Label] = device.Value
	}

	seen := make(map[string]bool, len(req.Devices))
	devices := make([]domain.Device, 0, len(req.Devices))
	for _, label := range req.Devices {
		if seen[label] {
			d.logger.Debug("ignoring duplicated device", "device", label)
			continue
		}
		seen[label] = true

		value, ok := values[label]
		if !ok {
			d.logger.Warn("device is not declared in "+discovery.DeviceTableName, "device", label)
		}
		devices = append(devices, domain.Device{Label: label, Value: value})
	}
	return devices, nil
}
