package parser

import (
	"fmt"
	"sort"
)

// TableKind is the shape of the KNOWN_DEVICES declaration
type TableKind string

const (
	TableMissing     TableKind = "missing"
	TableScalar      TableKind = "scalar"
	TableIndexed     TableKind = "indexed"
	TableAssociative TableKind = "assoc"
)

// DeviceEntry is one label and its lookup value
type DeviceEntry struct {
	Label string
	Value string
}

// DeviceTable is the decoded KNOWN_DEVICES declaration
type DeviceTable struct {
	Kind    TableKind
	Entries []DeviceEntry
}

// ParseDeviceTable decodes the kind record followed by key/value pairs.
// Indexed arrays keep their index order and use the element as both label
// and value; associative arrays are sorted by label.
func ParseDeviceTable(out []byte) (*DeviceTable, error) {
	records := SplitRecords(out)
	if len(records) == 0 {
		return nil, fmt.Errorf("empty device table listing")
	}

	table := &DeviceTable{Kind: TableKind(records[0])}
	pairs := records[1:]

	switch table.Kind {
	case TableMissing, TableScalar:
		return table, nil
	case TableIndexed, TableAssociative:
	default:
		return nil, fmt.Errorf("unknown device table kind %q", records[0])
	}

	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("device table has %d records, expected key/value pairs", len(pairs))
	}

	for i := 0; i < len(pairs); i += 2 {
		entry := DeviceEntry{Label: pairs[i], Value: pairs[i+1]}
		if table.Kind == TableIndexed {
			entry.Label = pairs[i+1]
		}
		table.Entries = append(table.Entries, entry)
	}

	if table.Kind == TableAssociative {
		sort.Slice(table.Entries, func(i, j int) bool {
			return table.Entries[i].Label < table.Entries[j].Label
		})
	}
	return table, nil
}
