// Package parser decodes the NUL-delimited records printed by the
// introspection shell scripts run during discovery.
package parser

import (
	"bytes"
)

// SplitRecords splits NUL terminated records. A trailing empty record is dropped.
func SplitRecords(out []byte) []string {
	if len(out) == 0 {
		return nil
	}
	parts := bytes.Split(out, []byte{0})
	if len(parts[len(parts)-1]) == 0 {
		parts = parts[:len(parts)-1]
	}
	records := make([]string, 0, len(parts))
	for _, p := range parts {
		records = append(records, string(p))
	}
	return records
}
