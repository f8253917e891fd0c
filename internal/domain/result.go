package domain

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of an executed scope
type Outcome int

const (
	OutcomeNotRun Outcome = iota
	OutcomeOK
	OutcomeError
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeError:
		return "ERROR"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "NOTRUN"
	}
}

// ScopeKind identifies a level of the scope hierarchy
type ScopeKind int

const (
	ScopeSuite ScopeKind = iota
	ScopeFile
	ScopeTest
)

// Scope identifies one executed fixture or test function
type Scope struct {
	Kind     ScopeKind
	UnitID   string // empty for ScopeSuite
	Device   string // empty for ScopeSuite
	Function string
}

// Label returns a human readable identifier for the scope
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeSuite:
		return "suite::" + s.Function
	default:
		return fmt.Sprintf("%s::%s on %s", s.UnitID, s.Function, s.Device)
	}
}

// ScopeResult is the outcome of a single scope along with its log location
type ScopeResult struct {
	Scope    Scope
	Outcome  Outcome
	Reason   SkipReason // set when Outcome is OutcomeSkipped
	ExitCode int
	LogPath  string
	Duration time.Duration
	Err      error // set when the subprocess could not be started
}

// RunStats holds the counters of a run
type RunStats struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Consistent reports whether total = passed + failed + skipped
func (s RunStats) Consistent() bool {
	return s.Total == s.Passed+s.Failed+s.Skipped
}
