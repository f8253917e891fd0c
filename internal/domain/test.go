package domain

// TestUnit represents a test file and the test functions it declares
type TestUnit struct {
	ID          string   // Path relative to the tests root, extension stripped
	Path        string   // Full path to the test file
	Functions   []string // Test functions in declaration order
	HasSetup    bool
	HasTeardown bool
}

// Cases returns the test cases of the unit in declaration order
func (u TestUnit) Cases() []TestCase {
	cases := make([]TestCase, 0, len(u.Functions))
	for _, fn := range u.Functions {
		cases = append(cases, TestCase{UnitID: u.ID, Function: fn})
	}
	return cases
}

// TestCase represents a single test function within a test unit
type TestCase struct {
	UnitID   string
	Function string
}

// ID returns the full test identity, "<unitId>::<function>"
func (tc TestCase) ID() string {
	return tc.UnitID + "::" + tc.Function
}

// Fixture describes the run-wide global fixture file
type Fixture struct {
	Path        string
	HasSetup    bool
	HasTeardown bool
}

// Suite is the result of discovering a tests root
type Suite struct {
	Root    string
	Fixture Fixture
	Units   []TestUnit
}

// CaseCount returns the number of test functions across all units
func (s Suite) CaseCount() int {
	var total int
	for _, u := range s.Units {
		total += len(u.Functions)
	}
	return total
}

// Pair is one (unit, device) combination of a run
type Pair struct {
	Unit   TestUnit
	Device Device
}
