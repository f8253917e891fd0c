package execution

import (
	"context"
	"log/slog"
	"strings"

	"code.cloudfoundry.org/clock"

	"batrun/internal/config"
	"batrun/internal/discovery"
	"batrun/internal/domain"
	"batrun/internal/stats"
	"batrun/internal/storage"
)

// Run is the state of one run threaded through the engine
type Run struct {
	ID      string
	Layout  *storage.Layout
	Suite   *domain.Suite
	Devices []domain.Device
	Stats   *stats.Aggregator
	Planned int

	index int
}

// NewRun creates the state of a run over suite and devices
func NewRun(id string, layout *storage.Layout, suite *domain.Suite, devices []domain.Device) *Run {
	return &Run{
		ID:      id,
		Layout:  layout,
		Suite:   suite,
		Devices: devices,
		Stats:   stats.NewAggregator(),
		Planned: suite.CaseCount() * len(devices),
	}
}

// next advances the progress index and returns it
func (r *Run) next() int {
	r.index++
	return r.index
}

// Engine drives the fixture state machine of the suite, file and test scopes
type Engine struct {
	runner                   Runner
	reporter                 Reporter
	clock                    clock.Clock
	logger                   *slog.Logger
	teardownAfterFailedSetup bool
}

// NewEngine creates a new Engine
func NewEngine(cfg *config.Config, runner Runner, reporter Reporter, clk clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		runner:                   runner,
		reporter:                 reporter,
		clock:                    clk,
		logger:                   logger.With("component", "engine"),
		teardownAfterFailedSetup: cfg.TeardownAfterFailedSetup,
	}
}

// RunSuiteSetup runs the global setup, if declared, with the device set and
// the run directory as arguments. The returned state is the one every unit
// of the run executes under.
func (e *Engine) RunSuiteSetup(ctx context.Context, run *Run, state domain.SkipState) (domain.ScopeResult, domain.SkipState) {
	if !run.Suite.Fixture.HasSetup {
		return domain.ScopeResult{Scope: suiteScope(discovery.SetupFunction)}, state
	}

	result := e.runScope(ctx, suiteScope(discovery.SetupFunction), e.suiteInvocation(run, discovery.SetupFunction), state)
	if failed(result) {
		e.logger.Warn("suite setup failed, skipping every test", "exit_code", result.ExitCode, "log", result.LogPath)
		state = state.Or(domain.Skip(domain.SkipSuiteSetup))
	}
	return result, state
}

// RunSuiteTeardown runs the global teardown, if declared. Its outcome never
// changes the run statistics.
func (e *Engine) RunSuiteTeardown(ctx context.Context, run *Run, state domain.SkipState) domain.ScopeResult {
	if !run.Suite.Fixture.HasTeardown {
		return domain.ScopeResult{Scope: suiteScope(discovery.TeardownFunction)}
	}

	result := e.runScope(ctx, suiteScope(discovery.TeardownFunction), e.suiteInvocation(run, discovery.TeardownFunction), state)
	if result.Outcome == domain.OutcomeError {
		e.logger.Warn("suite teardown failed", "exit_code", result.ExitCode, "log", result.LogPath)
	}
	return result
}

// RunUnit runs the setup, tests and teardown of unit on device. A failed
// setup skips the tests of this pair only. The results of the tests are
// returned in declaration order.
func (e *Engine) RunUnit(ctx context.Context, run *Run, unit domain.TestUnit, device domain.Device, dir string, state domain.SkipState) []domain.ScopeResult {
	local := domain.Run

	if unit.HasSetup {
		scope := fileScope(unit, device, discovery.SetupFunction)
		result := e.runScope(ctx, scope, e.unitInvocation(run, unit, device, dir, discovery.SetupFunction), state)
		if failed(result) {
			e.logger.Warn("file setup failed, skipping its tests", "unit", unit.ID, "device", device.Label,
				"exit_code", result.ExitCode, "log", result.LogPath)
			local = domain.Skip(domain.SkipFileSetup)
		}
	}

	testState := state.Or(local)
	results := make([]domain.ScopeResult, 0, len(unit.Functions))
	for _, tc := range unit.Cases() {
		scope := domain.Scope{Kind: domain.ScopeTest, UnitID: unit.ID, Device: device.Label, Function: tc.Function}
		e.reporter.Progress(run.next(), run.Planned, scope.Label())

		result := e.runScope(ctx, scope, e.unitInvocation(run, unit, device, dir, tc.Function), testState)
		run.Stats.Record(tc, device.Label, result.Outcome)
		results = append(results, result)
	}

	if unit.HasTeardown {
		teardownState := state
		if !e.teardownAfterFailedSetup {
			teardownState = testState
		}
		scope := fileScope(unit, device, discovery.TeardownFunction)
		e.runScope(ctx, scope, e.unitInvocation(run, unit, device, dir, discovery.TeardownFunction), teardownState)
	}

	return results
}

// runScope invokes a scope unless state skips it and reports the result
func (e *Engine) runScope(ctx context.Context, scope domain.Scope, inv Invocation, state domain.SkipState) domain.ScopeResult {
	result := domain.ScopeResult{Scope: scope}

	if state.Skipped() {
		result.Outcome = domain.OutcomeSkipped
		result.Reason = state.Reason()
		e.logger.Debug("skipped", "scope", scope.Label(), "reason", result.Reason)
		e.reporter.ScopeFinished(result)
		return result
	}

	result.LogPath = inv.LogPath
	start := e.clock.Now()
	exitCode, err := e.runner.Run(ctx, inv)
	result.Duration = e.clock.Since(start)
	result.ExitCode = exitCode

	if err != nil {
		e.logger.Error("cannot invoke", "scope", scope.Label(), "error", err)
		result.Outcome = domain.OutcomeError
		result.Err = err
	} else {
		result.Outcome = Classify(exitCode)
		if result.Outcome == domain.OutcomeSkipped {
			result.Reason = domain.SkipDeclared
		}
	}

	e.reporter.ScopeFinished(result)
	return result
}

func (e *Engine) suiteInvocation(run *Run, function string) Invocation {
	return Invocation{
		Sources:  []string{run.Suite.Fixture.Path},
		Function: function,
		Args:     []string{strings.Join(domain.Labels(run.Devices), " "), run.Layout.RunDir()},
		LogPath:  run.Layout.SuiteLog(function),
	}
}

func (e *Engine) unitInvocation(run *Run, unit domain.TestUnit, device domain.Device, dir, function string) Invocation {
	return Invocation{
		Sources:  []string{run.Suite.Fixture.Path, unit.Path},
		Function: function,
		Args:     []string{device.Label, dir},
		LogPath:  run.Layout.ScopeLog(device.Label, unit.ID, function),
	}
}

// failed reports whether a fixture result must cascade to the scopes below it.
// A fixture skipped by an ancestor does not cascade further.
func failed(result domain.ScopeResult) bool {
	switch result.Outcome {
	case domain.OutcomeError:
		return true
	case domain.OutcomeSkipped:
		return result.Reason == domain.SkipDeclared
	}
	return false
}

func suiteScope(function string) domain.Scope {
	return domain.Scope{Kind: domain.ScopeSuite, Function: function}
}

func fileScope(unit domain.TestUnit, device domain.Device, function string) domain.Scope {
	return domain.Scope{Kind: domain.ScopeFile, UnitID: unit.ID, Device: device.Label, Function: function}
}
