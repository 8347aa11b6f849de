// Package dataset provides a small ordered-column, row-oriented table used
// to carry survey and weather data between pipeline stages. Cells are
// loosely typed (string, int64, float64, nil) because the upstream sources
// disagree on types; conversion happens at the point of use via Float and
// String.
package dataset

import (
	"fmt"
	"slices"
)

// Table is an in-memory table with named, ordered columns. Column names are
// not required to be unique or non-empty: remote CSVs introduce an unnamed
// index column that callers drop by position.
type Table struct {
	cols []string
	rows [][]any
}

// New creates a Table from column names and rows. Every row must have
// exactly one cell per column.
func New(cols []string, rows [][]any) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(cols))
		}
	}
	return &Table{cols: slices.Clone(cols), rows: rows}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.cols)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Row returns the i-th row. The slice is shared with the table.
func (t *Table) Row(i int) []any {
	return t.rows[i]
}

// ColumnIndex returns the position of the first column with the given name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i := slices.Index(t.cols, name)
	return i, i >= 0
}

// Cell returns the value at row i under the named column.
func (t *Table) Cell(i int, name string) (any, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	return t.rows[i][j], nil
}

// Column returns all values under the named column, in row order.
func (t *Table) Column(name string) ([]any, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// AddColumn appends a column with the given values.
func (t *Table) AddColumn(name string, values []any) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// renameColumn relabels the first column named old to new.
func (t *Table) renameColumn(old, new string) error {
	j, ok := t.ColumnIndex(old)
	if !ok {
		return fmt.Errorf("no column %q", old)
	}
	t.cols[j] = new
	return nil
}

// SwapColumns exchanges the data held under columns a and b: whatever was
// addressable as a becomes addressable as b and vice versa. The swap goes
// through a collision-free temporary name so neither label ever refers to
// two columns mid-operation. Applying the same swap twice restores the
// original table.
func (t *Table) SwapColumns(a, b string) error {
	if a == b {
		return fmt.Errorf("swap columns: %q and %q are the same column", a, b)
	}
	tmp := tempColumnName(t.cols)
	if err := t.renameColumn(a, tmp); err != nil {
		return fmt.Errorf("swap columns: %w", err)
	}
	if err := t.renameColumn(b, a); err != nil {
		return fmt.Errorf("swap columns: %w", err)
	}
	if err := t.renameColumn(tmp, b); err != nil {
		return fmt.Errorf("swap columns: %w", err)
	}
	return nil
}

// tempColumnName returns a name guaranteed not to collide with any existing
// column, probing sequentially by appending underscores until unique.
// Pure function of the existing name set.
func tempColumnName(existing []string) string {
	name := "__swap_tmp__"
	for slices.Contains(existing, name) {
		name += "_"
	}
	return name
}

// DropColumnAt removes the column at position i. Used to discard the
// unnamed index column remote CSVs carry, which has no stable name.
func (t *Table) DropColumnAt(i int) error {
	if i < 0 || i >= len(t.cols) {
		return fmt.Errorf("drop column: index %d out of range (%d columns)", i, len(t.cols))
	}
	t.cols = slices.Delete(t.cols, i, i+1)
	for r := range t.rows {
		t.rows[r] = slices.Delete(t.rows[r], i, i+1)
	}
	return nil
}

// Apply replaces every cell in the named column with fn(cell).
func (t *Table) Apply(name string, fn func(any) any) error {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("no column %q", name)
	}
	for _, row := range t.rows {
		row[j] = fn(row[j])
	}
	return nil
}

// LeftJoin joins right onto t by the shared key column. Every row of t is
// preserved; rows with no match in right get nil for each joined column.
// When right holds multiple rows for a key, the first wins. Key values are
// compared via their canonical string form so an int64 key from a database
// matches the same key read as text from a CSV.
func (t *Table) LeftJoin(right *Table, key string) (*Table, error) {
	if _, ok := t.ColumnIndex(key); !ok {
		return nil, fmt.Errorf("left join: left table has no column %q", key)
	}
	rightKey, ok := right.ColumnIndex(key)
	if !ok {
		return nil, fmt.Errorf("left join: right table has no column %q", key)
	}

	index := make(map[string][]any, right.NumRows())
	for _, row := range right.rows {
		k := keyString(row[rightKey])
		if _, seen := index[k]; !seen {
			index[k] = row
		}
	}

	cols := slices.Clone(t.cols)
	var joined []int // right column positions carried over (all but the key)
	for j, name := range right.cols {
		if j == rightKey {
			continue
		}
		joined = append(joined, j)
		cols = append(cols, name)
	}

	leftKey, _ := t.ColumnIndex(key)
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		out := make([]any, 0, len(cols))
		out = append(out, row...)
		match := index[keyString(row[leftKey])]
		for _, j := range joined {
			if match == nil {
				out = append(out, nil)
			} else {
				out = append(out, match[j])
			}
		}
		rows[i] = out
	}

	return &Table{cols: cols, rows: rows}, nil
}
