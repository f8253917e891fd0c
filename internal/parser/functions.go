package parser

import (
	"fmt"
	"sort"
	"strconv"
)

// FunctionDecl is a shell function and the line it was declared on
type FunctionDecl struct {
	Name string
	Line int
}

// ParseFunctions decodes name/line record pairs and returns the functions in
// declaration order.
func ParseFunctions(out []byte) ([]FunctionDecl, error) {
	records := SplitRecords(out)
	if len(records)%2 != 0 {
		return nil, fmt.Errorf("function listing has %d records, expected name/line pairs", len(records))
	}

	decls := make([]FunctionDecl, 0, len(records)/2)
	for i := 0; i < len(records); i += 2 {
		line, err := strconv.Atoi(records[i+1])
		if err != nil {
			return nil, fmt.Errorf("function %s: bad line number %q", records[i], records[i+1])
		}
		decls = append(decls, FunctionDecl{Name: records[i], Line: line})
	}

	// Stable so that redefinitions on the same line keep the shell's order
	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Line < decls[j].Line
	})
	return decls, nil
}
