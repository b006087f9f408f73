// Package schema describes the columns of a loaded table and infers that
// description from a sample of raw delimited rows.
//
// A Schema is an immutable, ordered list of ColumnDescriptors. Names are
// normalized (lower-cased, interior whitespace collapsed to underscores) and
// unique; every downstream stage addresses columns through it.
package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	dserrors "github.com/paveg/dscribe/internal/errors"
)

// Type is the inferred value type of a column.
type Type int

const (
	// Text holds arbitrary UTF-8 strings.
	Text Type = iota
	// Integer holds 64-bit signed integers.
	Integer
	// Float holds 64-bit floating point numbers.
	Float
)

// String returns the lower-case type name.
func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	default:
		return "text"
	}
}

// IsNumeric reports whether values of t take part in sum and mean.
func (t Type) IsNumeric() bool {
	return t == Integer || t == Float
}

// ArrowType returns the Arrow data type used to store columns of t.
func (t Type) ArrowType() arrow.DataType {
	switch t {
	case Integer:
		return arrow.PrimitiveTypes.Int64
	case Float:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// TypeFromArrow maps an Arrow data type back onto a column Type.
// Unknown Arrow types fall back to Text.
func TypeFromArrow(dt arrow.DataType) Type {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return Integer
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return Float
	default:
		return Text
	}
}

// ColumnDescriptor describes a single column.
type ColumnDescriptor struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Nullable bool   `json:"nullable"`
}

// String returns "name: type" with a trailing "?" for nullable columns.
func (c ColumnDescriptor) String() string {
	if c.Nullable {
		return fmt.Sprintf("%s: %s?", c.Name, c.Type)
	}
	return fmt.Sprintf("%s: %s", c.Name, c.Type)
}

// Schema is an ordered, immutable set of uniquely named columns.
type Schema struct {
	columns []ColumnDescriptor
	index   map[string]int
}

// New creates a Schema. Duplicate names are a SchemaError.
func New(columns ...ColumnDescriptor) (*Schema, error) {
	s := &Schema{
		columns: append([]ColumnDescriptor(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		if _, dup := s.index[c.Name]; dup {
			return nil, dserrors.NewSchemaError("Schema", fmt.Sprintf("duplicate column name %q", c.Name))
		}
		s.index[c.Name] = i
	}
	return s, nil
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Column returns the descriptor at position i.
func (s *Schema) Column(i int) ColumnDescriptor {
	return s.columns[i]
}

// Columns returns a copy of all descriptors in order.
func (s *Schema) Columns() []ColumnDescriptor {
	return append([]ColumnDescriptor(nil), s.columns...)
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Select returns a schema restricted to the named columns, in the given order.
func (s *Schema) Select(names ...string) (*Schema, error) {
	cols := make([]ColumnDescriptor, 0, len(names))
	for _, name := range names {
		i, ok := s.index[name]
		if !ok {
			return nil, dserrors.NewInvalidInputError("Select", fmt.Sprintf("unknown column %q", name))
		}
		cols = append(cols, s.columns[i])
	}
	return New(cols...)
}

// ArrowSchema returns the equivalent Arrow schema.
func (s *Schema) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(s.columns))
	for i, c := range s.columns {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type.ArrowType(), Nullable: c.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

// String returns a string representation of the Schema
func (s *Schema) String() string {
	if len(s.columns) == 0 {
		return "Schema[empty]"
	}
	parts := make([]string, 0, len(s.columns)+1)
	parts = append(parts, fmt.Sprintf("Schema[%d]", len(s.columns)))
	for _, c := range s.columns {
		parts = append(parts, "  "+c.String())
	}
	return strings.Join(parts, "\n")
}

// NormalizeName lower-cases a raw header and replaces interior whitespace
// runs with a single underscore. Leading and trailing whitespace is dropped.
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "_")
}

// Disambiguate makes names unique by suffixing repeats with _1, _2, ... in
// order of occurrence. Empty names become column_<position>.
func Disambiguate(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	used := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			n = fmt.Sprintf("column_%d", i)
		}
		if !used[n] {
			used[n] = true
			out[i] = n
			continue
		}
		// skip suffixes that appear literally elsewhere in the header
		for k := 1; ; k++ {
			candidate := fmt.Sprintf("%s_%d", n, k)
			if !used[candidate] && !seen[candidate] {
				used[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
