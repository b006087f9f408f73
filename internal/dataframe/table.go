// Package dataframe provides the Table and its deferred evaluation layer.
//
// A Table owns a Schema and one series.Column per descriptor; all columns
// have the same length, which NewTable checks. Tables are never mutated:
// Select, Slice and Take return new Tables that share or copy column data,
// and LazyFrame plans are materialized into fresh Tables by Collect.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
)

// Table represents a set of equally long, uniquely named columns
type Table struct {
	schema  *schema.Schema
	columns []*series.Column
	rows    int
}

// NewTable creates a Table that takes ownership of columns. Columns of
// differing lengths or duplicate names are a SchemaError.
func NewTable(columns ...*series.Column) (*Table, error) {
	descs := make([]schema.ColumnDescriptor, len(columns))
	rows := 0
	for i, c := range columns {
		descs[i] = c.Descriptor()
		if i == 0 {
			rows = c.Len()
			continue
		}
		if c.Len() != rows {
			return nil, dserrors.NewSchemaError("NewTable",
				fmt.Sprintf("column %q has %d rows, expected %d", c.Name(), c.Len(), rows))
		}
	}

	s, err := schema.New(descs...)
	if err != nil {
		return nil, err
	}

	return &Table{
		schema:  s,
		columns: append([]*series.Column(nil), columns...),
		rows:    rows,
	}, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	t, _ := NewTable()
	return t
}

// Schema returns the table schema
func (t *Table) Schema() *schema.Schema {
	return t.schema
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// Columns returns the names of all columns in order
func (t *Table) Columns() []string {
	return t.schema.Names()
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*series.Column, bool) {
	i, ok := t.schema.Index(name)
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) *series.Column {
	return t.columns[i]
}

// Row returns the cells of row i in column order
func (t *Table) Row(i int) []series.Value {
	row := make([]series.Value, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Value(i)
	}
	return row
}

// Select returns a new Table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*series.Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			releaseAll(cols)
			return nil, dserrors.NewInvalidInputError("Select", fmt.Sprintf("unknown column %q", name))
		}
		cols = append(cols, col.Retain())
	}
	out, err := NewTable(cols...)
	if err != nil {
		releaseAll(cols)
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Slice creates a new Table containing rows from start (inclusive) to end (exclusive).
// The result shares column buffers with t; bounds are clamped.
func (t *Table) Slice(start, end int) *Table {
	cols := make([]*series.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Slice(start, end)
	}
	out := &Table{schema: t.schema, columns: cols}
	if len(cols) > 0 {
		out.rows = cols[0].Len()
	}
	return out
}

// Take copies the rows at the given indices into a new Table
func (t *Table) Take(indices []int, mem memory.Allocator) *Table {
	cols := make([]*series.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(indices, mem)
	}
	return &Table{schema: t.schema, columns: cols, rows: len(indices)}
}

// Retain returns a new handle on the same data; release both independently.
func (t *Table) Retain() *Table {
	cols := make([]*series.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Retain()
	}
	return &Table{schema: t.schema, columns: cols, rows: t.rows}
}

// String returns a string representation of the Table
func (t *Table) String() string {
	if len(t.columns) == 0 {
		return "Table[empty]"
	}

	parts := []string{fmt.Sprintf("Table[%dx%d]", t.Len(), t.Width())}
	for _, c := range t.schema.Columns() {
		parts = append(parts, "  "+c.String())
	}
	return strings.Join(parts, "\n")
}

// Release releases every column
func (t *Table) Release() {
	releaseAll(t.columns)
}

func releaseAll(cols []*series.Column) {
	for _, c := range cols {
		c.Release()
	}
}
