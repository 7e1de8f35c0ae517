package domain

import (
	"fmt"
	"strings"
)

// CombinedColumn is the derived column holding the embedding input text.
const CombinedColumn = "combined"

// Row is a single record, a mapping from column name to its string value.
type Row map[string]string

// Table is an ordered sequence of rows materialized from a source query.
// Row order is the identifier used to cross-reference into a vector index:
// index position i refers to Rows[i]. The order must never change after
// index construction, so de-duplication and combining happen before
// embedding and the table is treated as read-only afterwards.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the table has a column with the given name.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Deduplicate returns a copy of the table with exact duplicate rows removed.
// The first occurrence wins and relative row order is preserved.
func (t Table) Deduplicate() Table {
	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		key := r.fingerprint(t.Columns)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, r)
	}
	return Table{Columns: t.Columns, Rows: rows}
}

// Combine returns a copy of the table with a new CombinedColumn equal to the
// space-joined values of the named columns, in the order given. Existing
// columns and row order are untouched. Every named column must exist;
// a missing column fails fast with ErrInvalidInput.
func (t Table) Combine(columns []string) (Table, error) {
	if len(columns) == 0 {
		return Table{}, fmt.Errorf("%w: no columns to combine", ErrInvalidInput)
	}
	for _, c := range columns {
		if !t.HasColumn(c) {
			return Table{}, fmt.Errorf("%w: column %q does not exist in the table", ErrInvalidInput, c)
		}
	}

	out := Table{
		Columns: make([]string, 0, len(t.Columns)+1),
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	out.Columns = append(out.Columns, t.Columns...)
	if !t.HasColumn(CombinedColumn) {
		out.Columns = append(out.Columns, CombinedColumn)
	}

	parts := make([]string, len(columns))
	for _, r := range t.Rows {
		row := make(Row, len(r)+1)
		for k, v := range r {
			row[k] = v
		}
		for i, c := range columns {
			parts[i] = r[c]
		}
		row[CombinedColumn] = strings.Join(parts, " ")
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ColumnValues returns the values of one column in row order.
func (t Table) ColumnValues(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w: column %q does not exist in the table", ErrInvalidInput, name)
	}
	vals := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r[name]
	}
	return vals, nil
}

// fingerprint builds a duplicate-detection key over the table's column set.
func (r Row) fingerprint(columns []string) string {
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(r[c])
		b.WriteByte(0x1f)
	}
	return b.String()
}
