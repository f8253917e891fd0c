// Package stats counts the outcomes of the test triples of a run.
package stats

import (
	"fmt"
	"sync"

	"batrun/internal/domain"
)

// Aggregator accumulates RunStats and a per-test, per-device outcome matrix.
// It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	stats   domain.RunStats
	rows    []string
	devices []string
	cells   map[string]map[string]domain.Outcome
}

// NewAggregator creates an empty Aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{cells: make(map[string]map[string]domain.Outcome)}
}

// Record counts the outcome of one (unit, device, function) triple. The
// total and exactly one of passed, failed or skipped are incremented.
func (a *Aggregator) Record(tc domain.TestCase, device string, outcome domain.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch outcome {
	case domain.OutcomeOK:
		a.stats.Passed++
	case domain.OutcomeError:
		a.stats.Failed++
	case domain.OutcomeSkipped:
		a.stats.Skipped++
	default:
		panic(fmt.Sprintf("stats: non terminal outcome %v for %s on %s", outcome, tc.ID(), device))
	}
	a.stats.Total++

	id := tc.ID()
	row, ok := a.cells[id]
	if !ok {
		row = make(map[string]domain.Outcome)
		a.cells[id] = row
		a.rows = append(a.rows, id)
	}
	if !a.hasDevice(device) {
		a.devices = append(a.devices, device)
	}
	row[device] = outcome
}

func (a *Aggregator) hasDevice(device string) bool {
	for _, d := range a.devices {
		if d == device {
			return true
		}
	}
	return false
}

// Snapshot returns the current counters
func (a *Aggregator) Snapshot() domain.RunStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Matrix is the outcome of every recorded test on every device
type Matrix struct {
	Rows    []string // Test identities in first recorded order
	Devices []string // Devices in first recorded order
	Cells   map[string]map[string]domain.Outcome
}

// Outcome returns the outcome of test id on device, OutcomeNotRun if it was not recorded
func (m Matrix) Outcome(id, device string) domain.Outcome {
	return m.Cells[id][device]
}

// Matrix returns a copy of the recorded outcomes
func (a *Aggregator) Matrix() Matrix {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := Matrix{
		Rows:    append([]string(nil), a.rows...),
		Devices: append([]string(nil), a.devices...),
		Cells:   make(map[string]map[string]domain.Outcome, len(a.cells)),
	}
	for id, row := range a.cells {
		cp := make(map[string]domain.Outcome, len(row))
		for device, outcome := range row {
			cp[device] = outcome
		}
		m.Cells[id] = cp
	}
	return m
}
