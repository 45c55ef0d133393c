// Package dataset holds tabular data loaded from spreadsheets or built from
// tasks, and the filter and aggregation engine that runs over it.
package dataset

import (
	"fmt"
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

// Dataset is an ordered set of named columns and rows of typed values.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]Value

	index map[string]int
}

// New creates an empty dataset with the given columns. Duplicate column
// names are suffixed with " (2)", " (3)" and so on.
func New(name string, columns []string) *Dataset {
	d := &Dataset{Name: name, index: make(map[string]int, len(columns))}
	for _, c := range columns {
		c = strings.TrimSpace(c)
		unique := c
		for n := 2; ; n++ {
			if _, dup := d.index[unique]; !dup {
				break
			}
			unique = fmt.Sprintf("%s (%d)", c, n)
		}
		d.index[unique] = len(d.Columns)
		d.Columns = append(d.Columns, unique)
	}
	return d
}

// FromRecords builds a dataset from generic records. Missing keys are null.
func FromRecords(name string, columns []string, records []map[string]any) *Dataset {
	d := New(name, columns)
	for _, rec := range records {
		row := make([]Value, len(columns))
		for i, c := range columns {
			row[i] = FromAny(rec[c])
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// Append adds a row. Short rows are padded with nulls.
func (d *Dataset) Append(values ...Value) error {
	if len(values) > len(d.Columns) {
		return fmt.Errorf("row has %d values, dataset %q has %d columns", len(values), d.Name, len(d.Columns))
	}
	row := make([]Value, len(d.Columns))
	copy(row, values)
	d.Rows = append(d.Rows, row)
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex returns the position of column name.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Column returns every value of one column.
func (d *Dataset) Column(name string) ([]Value, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Value returns the cell at row r in column name, or null.
func (d *Dataset) Value(r int, name string) Value {
	i, ok := d.index[name]
	if !ok || r < 0 || r >= len(d.Rows) {
		return NullValue()
	}
	return d.Rows[r][i]
}

// Where returns a dataset sharing this one's columns with only the rows for
// which keep returns true. Rows are shared, not copied.
func (d *Dataset) Where(keep func(row []Value) bool) *Dataset {
	out := d.shell()
	for _, row := range d.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	out := d.shell()
	if n > len(d.Rows) || n < 0 {
		n = len(d.Rows)
	}
	out.Rows = d.Rows[:n:n]
	return out
}

func (d *Dataset) shell() *Dataset {
	return &Dataset{Name: d.Name, Columns: d.Columns, index: d.index}
}

// Records converts rows back to generic records keyed by column.
func (d *Dataset) Records() []map[string]any {
	out := make([]map[string]any, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := make(map[string]any, len(d.Columns))
		for i, c := range d.Columns {
			rec[c] = row[i].Interface()
		}
		out = append(out, rec)
	}
	return out
}

// ColumnKind reports the inferred kind of a column: Date when every
// non-null value is a date, Number when every non-null value coerces to a
// number, Null when the column is empty, String otherwise.
func (d *Dataset) ColumnKind(name string) Kind {
	vals, ok := d.Column(name)
	if !ok {
		return Null
	}
	kind := Null
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		k := v.Kind()
		if k == String {
			if _, ok := v.Float(); ok {
				k = Number
			}
		}
		switch {
		case kind == Null:
			kind = k
		case kind != k:
			return String
		}
	}
	return kind
}

// InferTypes converts cells in place. In columns whose name contains "date"
// (any case) parseable strings become dates. A column becomes numeric when
// every non-null cell is a number or text that prints back unchanged as one,
// so identifier columns like "00123" keep their text. Anything else is left
// as is.
func (d *Dataset) InferTypes() {
	for ci, name := range d.Columns {
		if strings.Contains(strings.ToLower(name), "date") {
			for _, row := range d.Rows {
				if row[ci].Kind() != String {
					continue
				}
				if t, ok := row[ci].Time(); ok {
					row[ci] = DateValue(t)
				}
			}
			continue
		}
		if !d.numericText(ci) {
			continue
		}
		for _, row := range d.Rows {
			if row[ci].Kind() != String {
				continue
			}
			if f, ok := NumberText(row[ci].s); ok {
				row[ci] = NumberValue(f)
			}
		}
	}
}

func (d *Dataset) numericText(ci int) bool {
	seen := false
	for _, row := range d.Rows {
		v := row[ci]
		switch v.Kind() {
		case Null:
			continue
		case Number:
		case String:
			if _, ok := NumberText(v.s); !ok {
				return false
			}
		default:
			return false
		}
		seen = true
	}
	return seen
}

func (d *Dataset) requireColumn(name, code string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, clierr.Newf(code, "unknown column %q", name).
			WithDetails(map[string]any{"column": name, "columns": d.Columns})
	}
	return i, nil
}
