package entity

import "strings"

// RawRecord is one row of a source file before normalization.
type RawRecord struct {
	Source  string
	Line    int
	Columns []string
	// Raw holds the cells as read, padded to the header width.
	Raw []string
	// Values maps column names to cells; a repeated column name keeps its
	// first cell.
	Values map[string]string
}

// NewRawRecord pairs a header with one row of cells. Missing trailing cells
// read as empty.
func NewRawRecord(source string, line int, header, cells []string) RawRecord {
	raw := make([]string, max(len(header), len(cells)))
	copy(raw, cells)
	values := make(map[string]string, len(header))
	for i, col := range header {
		if _, seen := values[col]; !seen {
			values[col] = raw[i]
		}
	}
	return RawRecord{Source: source, Line: line, Columns: header, Raw: raw, Values: values}
}

// Get returns the value of column and whether the column exists.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Cells returns the row as read, in header order.
func (r RawRecord) Cells() []string {
	out := make([]string, len(r.Raw))
	copy(out, r.Raw)
	return out
}

// Fingerprint identifies a row by its header and all of its cells.
func (r RawRecord) Fingerprint() string {
	return strings.Join(r.Columns, "\x1f") + "\x1e" + strings.Join(r.Raw, "\x1f")
}
