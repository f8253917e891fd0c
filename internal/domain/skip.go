package domain

// SkipReason explains why a scope was not executed. Reasons are ordered from
// the lowest to the highest priority.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipDeclared is an explicit skip signalled by the test itself
	SkipDeclared
	SkipFileSetup
	SkipSuiteSetup
	SkipDryRun
)

func (r SkipReason) String() string {
	switch r {
	case SkipDeclared:
		return "declared by test"
	case SkipFileSetup:
		return "file setup failed"
	case SkipSuiteSetup:
		return "suite setup failed"
	case SkipDryRun:
		return "dry run"
	default:
		return "none"
	}
}

// SkipState is passed down the scope hierarchy. The zero value is Run.
type SkipState struct {
	reason SkipReason
}

// Run is the state under which scopes are executed
var Run = SkipState{}

// Skip returns a state forcing every scope below it to be skipped
func Skip(reason SkipReason) SkipState {
	return SkipState{reason: reason}
}

// Skipped reports whether scopes under this state must not be executed
func (s SkipState) Skipped() bool {
	return s.reason != SkipNone
}

// Reason returns the reason scopes are skipped, SkipNone under Run
func (s SkipState) Reason() SkipReason {
	return s.reason
}

// Or combines two states, keeping the highest priority reason
func (s SkipState) Or(other SkipState) SkipState {
	if other.reason > s.reason {
		return other
	}
	return s
}
