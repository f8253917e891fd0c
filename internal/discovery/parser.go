package discovery

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"batrun/internal/config"
	"batrun/internal/parser"
)

const (
	// SetupFunction and TeardownFunction are the reserved fixture names
	SetupFunction    = "setup"
	TeardownFunction = "teardown"
	// TestFunctionPrefix marks executable test functions
	TestFunctionPrefix = "test_"
)

// listFunctionsScript sources the file and prints every function declared in
// it as name/line records on the original stdout. Output of the file itself
// goes to stderr.
const listFunctionsScript = `exec 3>&1 1>&2
readonly __batrun_file="$BATRUN_FILE"
source "$__batrun_file"
mapfile -t __batrun_fns < <(declare -F)
shopt -s extdebug
for __batrun_entry in "${__batrun_fns[@]}"; do
	read -r __batrun_name __batrun_line __batrun_src < <(declare -F "${__batrun_entry##* }")
	if [[ $__batrun_src == "$__batrun_file" ]]; then
		printf '%s\0%s\0' "$__batrun_name" "$__batrun_line" >&3
	fi
done
`

// IntrospectionError is returned when a file cannot be loaded for introspection
type IntrospectionError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *IntrospectionError) Error() string {
	msg := fmt.Sprintf("cannot load %s (exit status %d)", e.Path, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// FileDecls are the declarations of interest found in one file
type FileDecls struct {
	Tests       []string // Test functions in declaration order
	HasSetup    bool
	HasTeardown bool
}

// Parser loads shell files in an isolated subprocess to enumerate their declarations
type Parser struct {
	config *config.Config
}

// NewParser creates a new Parser
func NewParser(cfg *config.Config) *Parser {
	return &Parser{config: cfg}
}

// FindTestCases returns the test functions declared in a file, in declaration order
func (p *Parser) FindTestCases(ctx context.Context, filePath string) ([]string, error) {
	decls, err := p.Inspect(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return decls.Tests, nil
}

// Inspect returns the test functions and fixtures declared in a file
func (p *Parser) Inspect(ctx context.Context, filePath string) (*FileDecls, error) {
	out, err := p.introspect(ctx, filePath, listFunctionsScript)
	if err != nil {
		return nil, err
	}

	functions, err := parser.ParseFunctions(out)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	decls := &FileDecls{}
	for _, fn := range functions {
		switch {
		case fn.Name == SetupFunction:
			decls.HasSetup = true
		case fn.Name == TeardownFunction:
			decls.HasTeardown = true
		case strings.HasPrefix(fn.Name, TestFunctionPrefix):
			decls.Tests = append(decls.Tests, fn.Name)
		}
	}
	return decls, nil
}

// introspect runs script with BATRUN_FILE pointing at filePath and returns its fd 3 output
func (p *Parser) introspect(ctx context.Context, filePath, script string) ([]byte, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.config.Shell, "-c", script)
	cmd.Env = append(os.Environ(), "BATRUN_FILE="+abs)
	cmd.Dir = p.config.GetTestsPath()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, &IntrospectionError{Path: filePath, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("run %s: %w", p.config.Shell, err)
	}
	return stdout.Bytes(), nil
}
