package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"batrun/internal/domain"
	"batrun/internal/stats"
)

// Matrix cell markers
const (
	CharPass = "V"
	CharFail = "X"
	CharSkip = ">"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// TreeNode represents a directory or unit in the test tree
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Unit     *domain.TestUnit
}

// PrintTestList prints the units of a suite as a tree, optionally with their test functions
func (f *Formatter) PrintTestList(suite *domain.Suite, showTestCases bool) {
	fmt.Fprintln(f.out, color.GreenString("Found %d test case(s) in %d test unit(s) of %s:",
		suite.CaseCount(), len(suite.Units), suite.Root))

	root := &TreeNode{Children: make(map[string]*TreeNode)}
	for i := range suite.Units {
		unit := &suite.Units[i]
		current := root
		parts := strings.Split(unit.ID, "/")
		for j, part := range parts {
			child, ok := current.Children[part]
			if !ok {
				child = &TreeNode{Name: part, Children: make(map[string]*TreeNode)}
				current.Children[part] = child
			}
			if j == len(parts)-1 {
				child.Unit = unit
			}
			current = child
		}
	}

	f.printTreeNode(root, "", showTestCases)
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string, showTestCases bool) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLast := i == len(keys)-1

		connector, childPrefix := "├── ", prefix+"│   "
		if isLast {
			connector, childPrefix = "└── ", prefix+"    "
		}

		if child.Unit != nil {
			fmt.Fprintf(f.out, "%s%s%s%s\n", prefix, connector, color.YellowString(child.Name), fixtureMarkers(child.Unit))
		} else {
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, color.CyanString(child.Name+"/"))
		}

		// A unit may share its name with a directory: print its functions first
		if child.Unit != nil && showTestCases {
			f.printFunctions(child.Unit, childPrefix, len(child.Children) == 0)
		}
		f.printTreeNode(child, childPrefix, showTestCases)
	}
}

func (f *Formatter) printFunctions(unit *domain.TestUnit, prefix string, lastEntries bool) {
	if len(unit.Functions) == 0 {
		fmt.Fprintf(f.out, "%s└── %s\n", prefix, color.RedString("(no test cases found)"))
		return
	}
	for i, fn := range unit.Functions {
		connector := "├── "
		if i == len(unit.Functions)-1 && lastEntries {
			connector = "└── "
		}
		fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, fn)
	}
}

func fixtureMarkers(unit *domain.TestUnit) string {
	var markers []string
	if unit.HasSetup {
		markers = append(markers, "setup")
	}
	if unit.HasTeardown {
		markers = append(markers, "teardown")
	}
	if len(markers) == 0 {
		return ""
	}
	return " " + color.HiBlackString("[%s]", strings.Join(markers, ", "))
}

// PrintTestIDs prints one full test identity per line
func (f *Formatter) PrintTestIDs(suite *domain.Suite) {
	for _, unit := range suite.Units {
		for _, tc := range unit.Cases() {
			fmt.Fprintln(f.out, tc.ID())
		}
	}
}

// PrintDevices prints the device table declared by the global fixture
func (f *Formatter) PrintDevices(fixturePath string, devices []domain.Device) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Devices known by " + filepath.Base(fixturePath))
	t.AppendHeader(table.Row{"Device", "Value"})
	for _, d := range devices {
		t.AppendRow(table.Row{d.Label, d.Value})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// PrintSummary prints the counters of a run and its elapsed time
func (f *Formatter) PrintSummary(s domain.RunStats, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Test Execution Summary")
	t.AppendHeader(table.Row{"Total", "Passed", "Failed", "Skipped", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Total", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})
	t.AppendRow(table.Row{s.Total, s.Passed, s.Failed, s.Skipped, FormatElapsed(elapsed)})

	switch {
	case s.Failed > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case s.Skipped > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}
	t.Render()

	fmt.Fprintf(f.out, "SUMMARY: Total: %d, Passed: %d, Failed: %d, Skipped: %d\n", s.Total, s.Passed, s.Failed, s.Skipped)
	fmt.Fprintf(f.out, "Elapsed time: %s\n", FormatElapsed(elapsed))
}

// PrintMatrix prints one row per test identity and one column per device
func (f *Formatter) PrintMatrix(m stats.Matrix) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Results (%s passed, %s failed, %s skipped)", CharPass, CharFail, CharSkip))

	header := table.Row{"Test"}
	configs := make([]table.ColumnConfig, 0, len(m.Devices))
	for i, device := range m.Devices {
		header = append(header, device)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, id := range m.Rows {
		row := table.Row{id}
		for _, device := range m.Devices {
			row = append(row, matrixCell(m.Outcome(id, device)))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func matrixCell(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeOK:
		return color.GreenString(CharPass)
	case domain.OutcomeError:
		return color.RedString(CharFail)
	case domain.OutcomeSkipped:
		return color.YellowString(CharSkip)
	default:
		return ""
	}
}

// FormatElapsed formats a duration as "1h 1m 1s", "1m 1s" or "1s"
func FormatElapsed(d time.Duration) string {
	seconds := int(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	seconds %= 60
	minutes %= 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
