// Package series provides the column store: typed, null-aware columns
// backed by Apache Arrow arrays.
//
// A Column owns exactly one Arrow array whose validity bitmap records
// missing cells. Columns are immutable; Slice and Select style operations
// share the underlying buffers through Arrow reference counting, so every
// Column must be Released by whoever created it.
package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/schema"
)

// Column represents a typed data column with Apache Arrow backend
type Column struct {
	desc  schema.ColumnDescriptor
	array arrow.Array
}

// Build parses raw cells against desc.Type. Empty cells and cells that fail
// to parse become null; the number of non-empty cells that failed to parse
// is returned as degraded. The returned descriptor is marked nullable when
// any null was produced.
func Build(desc schema.ColumnDescriptor, cells []string, mem memory.Allocator) (col *Column, degraded int) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	var arr arrow.Array
	nulls := 0

	switch desc.Type {
	case schema.Integer:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.Reserve(len(cells))
		for _, cell := range cells {
			if schema.IsEmpty(cell) {
				builder.AppendNull()
				nulls++
				continue
			}
			v, ok := schema.ParseInteger(cell)
			if !ok {
				builder.AppendNull()
				nulls++
				degraded++
				continue
			}
			builder.Append(v)
		}
		arr = builder.NewArray()
	case schema.Float:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.Reserve(len(cells))
		for _, cell := range cells {
			if schema.IsEmpty(cell) {
				builder.AppendNull()
				nulls++
				continue
			}
			v, ok := schema.ParseFloat(cell)
			if !ok {
				builder.AppendNull()
				nulls++
				degraded++
				continue
			}
			builder.Append(v)
		}
		arr = builder.NewArray()
	default:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.Reserve(len(cells))
		for _, cell := range cells {
			if schema.IsEmpty(cell) {
				builder.AppendNull()
				nulls++
				continue
			}
			builder.Append(cell)
		}
		arr = builder.NewArray()
	}

	if nulls > 0 {
		desc.Nullable = true
	}
	return &Column{desc: desc, array: arr}, degraded
}

// FromValues builds a column of the given type from values. Values whose
// type differs from typ are converted: numerics are promoted or truncated,
// and anything stored into a Text column is rendered with Format.
func FromValues(name string, typ schema.Type, values []Value, mem memory.Allocator) *Column {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	desc := schema.ColumnDescriptor{Name: name, Type: typ}
	var arr arrow.Array

	switch typ {
	case schema.Integer:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for _, v := range values {
			if v.IsNull() || v.Type() == schema.Text {
				builder.AppendNull()
				desc.Nullable = true
				continue
			}
			builder.Append(v.Int64())
		}
		arr = builder.NewArray()
	case schema.Float:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for _, v := range values {
			if v.IsNull() || v.Type() == schema.Text {
				builder.AppendNull()
				desc.Nullable = true
				continue
			}
			builder.Append(v.Float64())
		}
		arr = builder.NewArray()
	default:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for _, v := range values {
			if v.IsNull() {
				builder.AppendNull()
				desc.Nullable = true
				continue
			}
			if v.Type() == schema.Text {
				builder.Append(v.Str())
			} else {
				builder.Append(v.String())
			}
		}
		arr = builder.NewArray()
	}

	return &Column{desc: desc, array: arr}
}

// FromArray wraps an existing Arrow array, retaining it.
func FromArray(name string, arr arrow.Array) (*Column, error) {
	switch arr.(type) {
	case *array.Int64, *array.Float64, *array.String:
	default:
		return nil, fmt.Errorf("unsupported array type: %s", arr.DataType())
	}
	arr.Retain()
	return &Column{
		desc: schema.ColumnDescriptor{
			Name:     name,
			Type:     schema.TypeFromArrow(arr.DataType()),
			Nullable: arr.NullN() > 0,
		},
		array: arr,
	}, nil
}

// Name returns the column name
func (c *Column) Name() string {
	return c.desc.Name
}

// Descriptor returns the column descriptor
func (c *Column) Descriptor() schema.ColumnDescriptor {
	return c.desc
}

// Type returns the column value type
func (c *Column) Type() schema.Type {
	return c.desc.Type
}

// Len returns the number of cells, nulls included
func (c *Column) Len() int {
	return c.array.Len()
}

// NullCount returns the number of null cells
func (c *Column) NullCount() int {
	return c.array.NullN()
}

// IsNull checks if the value at index is null
func (c *Column) IsNull(index int) bool {
	return c.array.IsNull(index)
}

// Value returns the cell at index. Out-of-range indices yield null.
func (c *Column) Value(index int) Value {
	if index < 0 || index >= c.array.Len() || c.array.IsNull(index) {
		return Null(c.desc.Type)
	}
	switch arr := c.array.(type) {
	case *array.Int64:
		return Int(arr.Value(index))
	case *array.Float64:
		return Float(arr.Value(index))
	case *array.String:
		return Text(arr.Value(index))
	default:
		return Null(c.desc.Type)
	}
}

// Values returns every cell in order
func (c *Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Int64s returns the non-null cells of an Integer column in row order.
func (c *Column) Int64s() []int64 {
	arr, ok := c.array.(*array.Int64)
	if !ok {
		return nil
	}
	out := make([]int64, 0, arr.Len()-arr.NullN())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsValid(i) {
			out = append(out, arr.Value(i))
		}
	}
	return out
}

// Float64s returns the non-null cells of a Float column in row order.
func (c *Column) Float64s() []float64 {
	arr, ok := c.array.(*array.Float64)
	if !ok {
		return nil
	}
	out := make([]float64, 0, arr.Len()-arr.NullN())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsValid(i) {
			out = append(out, arr.Value(i))
		}
	}
	return out
}

// Strings returns the non-null cells of a Text column in row order.
func (c *Column) Strings() []string {
	arr, ok := c.array.(*array.String)
	if !ok {
		return nil
	}
	out := make([]string, 0, arr.Len()-arr.NullN())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsValid(i) {
			out = append(out, arr.Value(i))
		}
	}
	return out
}

// Slice returns rows [start, end) sharing the underlying buffers.
// Bounds are clamped to the column length.
func (c *Column) Slice(start, end int) *Column {
	n := c.array.Len()
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	return &Column{desc: c.desc, array: array.NewSlice(c.array, int64(start), int64(end))}
}

// Take copies the cells at the given row indices into a new column.
func (c *Column) Take(indices []int, mem memory.Allocator) *Column {
	values := make([]Value, len(indices))
	for i, idx := range indices {
		values[i] = c.Value(idx)
	}
	out := FromValues(c.desc.Name, c.desc.Type, values, mem)
	out.desc.Nullable = c.desc.Nullable
	return out
}

// Rename returns a column sharing the data under a new name.
func (c *Column) Rename(name string) *Column {
	c.array.Retain()
	desc := c.desc
	desc.Name = name
	return &Column{desc: desc, array: c.array}
}

// Retain returns a new handle on the same data; release both independently.
func (c *Column) Retain() *Column {
	c.array.Retain()
	return &Column{desc: c.desc, array: c.array}
}

// Array returns the underlying Arrow array (retains a reference)
func (c *Column) Array() arrow.Array {
	c.array.Retain()
	return c.array
}

// String returns a string representation of the column
func (c *Column) String() string {
	return fmt.Sprintf("Column[%s]: %s (len=%d, nulls=%d)", c.desc.Type, c.desc.Name, c.Len(), c.NullCount())
}

// Release releases the underlying Arrow memory
func (c *Column) Release() {
	if c.array != nil {
		c.array.Release()
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
