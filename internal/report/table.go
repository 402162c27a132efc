package report

import (
	"strconv"
	"strings"
)

// Row maps column names to cell values. Fields are always set by column name,
// never by position, so the header schema stays the single source of order.
type Row map[string]string

// Table is an ordered, column-named collection of report rows. Column order
// comes from Headers; Rows never reorder on their own.
type Table struct {
	Headers []string
	Rows    []Row
}

// NewTable creates an empty table with the given header schema.
func NewTable(headers []string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// Append adds one row to the end of the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the header schema contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the schema unless it already exists.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Headers = append(t.Headers, name)
	}
}

// Column returns the values of the named column, one per row, with missing
// cells as empty strings.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// ColumnSet returns the distinct values of the named column.
func (t *Table) ColumnSet(name string) map[string]struct{} {
	set := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		set[row[name]] = struct{}{}
	}
	return set
}

// Filter returns a new table holding the rows for which keep returns true.
// Rows are shared, not copied, so mutations through the filtered table are
// visible in the original rows.
func (t *Table) Filter(keep func(Row) bool) *Table {
	filtered := NewTable(t.Headers)
	for _, row := range t.Rows {
		if keep(row) {
			filtered.Append(row)
		}
	}
	return filtered
}

// Float parses the named cell as a number. The second return is false for
// empty or unparseable cells.
func (r Row) Float(name string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[name]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AppendIssue accumulates a moderation flag on the row, comma-separated.
// Flags from one pass never overwrite each other.
func (r Row) AppendIssue(issue string) {
	if existing := r[ColModerationIssue]; existing != "" {
		r[ColModerationIssue] = existing + ", " + issue
		return
	}
	r[ColModerationIssue] = issue
}

// FormatFloat renders a numeric cell value without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
