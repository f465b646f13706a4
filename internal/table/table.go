package table

import (
	"fmt"
	"math"
	"strconv"

	"creditprep/internal/errors"
)

// ColumnKind distinguishes numeric columns from text columns. The kind of
// every column is fixed when its table is loaded or the column is added.
type ColumnKind int

const (
	// Numeric columns store cells as float64, with NaN marking a missing cell.
	Numeric ColumnKind = iota
	// Text columns store cells as strings, with "" marking a missing cell.
	Text
)

// Column is one named column of a Table. Exactly one of Floats/Texts is
// populated, selected by Kind.
type Column struct {
	Name   string
	Kind   ColumnKind
	Floats []float64
	Texts  []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Texts)
}

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Texts[i] == ""
}

// Cell returns the cell at row i rendered as a string: text cells as-is,
// numeric cells in the shortest form that round-trips, missing cells as "".
func (c *Column) Cell(i int) string {
	if c.Kind == Text {
		return c.Texts[i]
	}
	v := c.Floats[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is an in-memory tabular dataset: ordered, named columns of equal
// length. Input files are materialized as Tables before any aggregation
// runs, and the merged output is a Table again.
type Table struct {
	name    string
	columns []*Column
	index   map[string]*Column
	rows    int
}

// New creates an empty table with the given diagnostic name and row count.
func New(name string, rows int) *Table {
	return &Table{
		name:  name,
		index: make(map[string]*Column),
		rows:  rows,
	}
}

// Name returns the diagnostic name of the table, normally its source file name.
func (t *Table) Name() string { return t.name }

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Columns returns the table's columns in order. The slice is the backing
// store, not a copy.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or a schema error if it is absent.
func (t *Table) Column(name string) (*Column, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, errors.NewSchemaError(t.name, name, "is absent")
	}
	return col, nil
}

// Numeric returns the cells of a numeric column. The slice is the column's
// backing store, not a copy.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != Numeric {
		return nil, errors.NewSchemaError(t.name, name, "is not numeric")
	}
	return col.Floats, nil
}

// Text returns the cells of a text column. The slice is the column's
// backing store, not a copy.
func (t *Table) Text(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != Text {
		return nil, errors.NewSchemaError(t.name, name, "is not text")
	}
	return col.Texts, nil
}

// Ints returns a numeric column converted to int64, requiring every cell
// to be present and integral. Key columns are accessed through this.
func (t *Table) Ints(name string) ([]int64, error) {
	values, err := t.Numeric(name)
	if err != nil {
		return nil, err
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, errors.NewSchemaError(t.name, name, fmt.Sprintf("has a missing value at row %d", i))
		}
		if v != math.Trunc(v) {
			return nil, errors.NewSchemaError(t.name, name, fmt.Sprintf("has a non-integer value at row %d", i))
		}
		ints[i] = int64(v)
	}
	return ints, nil
}

// AddNumeric appends a numeric column. The value count must match the
// table's row count and the name must be new.
func (t *Table) AddNumeric(name string, values []float64) error {
	if err := t.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := &Column{Name: name, Kind: Numeric, Floats: values}
	t.columns = append(t.columns, col)
	t.index[name] = col
	return nil
}

// AddText appends a text column under the same rules as AddNumeric.
func (t *Table) AddText(name string, values []string) error {
	if err := t.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := &Column{Name: name, Kind: Text, Texts: values}
	t.columns = append(t.columns, col)
	t.index[name] = col
	return nil
}

// ReplaceNumeric swaps an existing column's cells for numeric values,
// keeping its position. Used when a categorical column is encoded.
func (t *Table) ReplaceNumeric(name string, values []float64) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	if len(values) != t.rows {
		return errors.NewSchemaError(t.name, name, fmt.Sprintf("has %d values for %d rows", len(values), t.rows))
	}
	col.Kind = Numeric
	col.Floats = values
	col.Texts = nil
	return nil
}

func (t *Table) checkAdd(name string, count int) error {
	if count != t.rows {
		return errors.NewSchemaError(t.name, name, fmt.Sprintf("has %d values for %d rows", count, t.rows))
	}
	if t.Has(name) {
		return errors.NewSchemaError(t.name, name, "already exists")
	}
	return nil
}
