package series_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	t.Run("integer column with empty cells", func(t *testing.T) {
		desc := schema.ColumnDescriptor{Name: "b", Type: schema.Integer}
		col, degraded := series.Build(desc, []string{"2", "", "6"}, mem)
		defer col.Release()

		assert.Equal(t, 0, degraded)
		assert.Equal(t, 3, col.Len())
		assert.Equal(t, 1, col.NullCount())
		assert.True(t, col.Descriptor().Nullable)
		assert.Equal(t, series.Int(2), col.Value(0))
		assert.True(t, col.Value(1).IsNull())
		assert.Equal(t, []int64{2, 6}, col.Int64s())
	})

	t.Run("post-sample anomalies degrade to null", func(t *testing.T) {
		desc := schema.ColumnDescriptor{Name: "n", Type: schema.Integer}
		col, degraded := series.Build(desc, []string{"1", "two", "3"}, mem)
		defer col.Release()

		assert.Equal(t, 1, degraded)
		assert.True(t, col.IsNull(1))
		assert.True(t, col.Descriptor().Nullable)
	})

	t.Run("float column", func(t *testing.T) {
		desc := schema.ColumnDescriptor{Name: "f", Type: schema.Float}
		col, degraded := series.Build(desc, []string{"1.5", "2", "x"}, mem)
		defer col.Release()

		assert.Equal(t, 1, degraded)
		assert.Equal(t, []float64{1.5, 2}, col.Float64s())
	})

	t.Run("text column keeps raw cells", func(t *testing.T) {
		desc := schema.ColumnDescriptor{Name: "s", Type: schema.Text}
		col, degraded := series.Build(desc, []string{" padded ", "", "x"}, mem)
		defer col.Release()

		assert.Equal(t, 0, degraded)
		assert.Equal(t, []string{" padded ", "x"}, col.Strings())
		assert.True(t, col.Descriptor().Nullable)
	})

	t.Run("non-nullable when every cell parses", func(t *testing.T) {
		desc := schema.ColumnDescriptor{Name: "a", Type: schema.Integer}
		col, _ := series.Build(desc, []string{"1", "3", "5"}, mem)
		defer col.Release()

		assert.False(t, col.Descriptor().Nullable)
	})
}

func TestColumn_SliceAndTake(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	desc := schema.ColumnDescriptor{Name: "v", Type: schema.Integer}
	col, _ := series.Build(desc, []string{"10", "20", "", "40", "50"}, mem)
	defer col.Release()

	head := col.Slice(0, 3)
	defer head.Release()
	assert.Equal(t, 3, head.Len())
	assert.Equal(t, 1, head.NullCount())

	clamped := col.Slice(3, 100)
	defer clamped.Release()
	assert.Equal(t, 2, clamped.Len())
	assert.Equal(t, series.Int(40), clamped.Value(0))

	empty := col.Slice(0, 0)
	defer empty.Release()
	assert.Equal(t, 0, empty.Len())

	taken := col.Take([]int{4, 2, 0}, mem)
	defer taken.Release()
	assert.Equal(t, []series.Value{series.Int(50), series.Null(schema.Integer), series.Int(10)}, taken.Values())
}

func TestColumn_FromValues(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("text column renders numbers", func(t *testing.T) {
		col := series.FromValues("s", schema.Text, []series.Value{
			series.Int(3), series.Float(4), series.Null(schema.Float), series.Text("x"),
		}, mem)
		defer col.Release()

		assert.Equal(t, []string{"3", "4.0", "x"}, col.Strings())
		assert.True(t, col.Descriptor().Nullable)
	})

	t.Run("float column promotes integers", func(t *testing.T) {
		col := series.FromValues("f", schema.Float, []series.Value{series.Int(3), series.Float(0.5)}, mem)
		defer col.Release()

		assert.Equal(t, []float64{3, 0.5}, col.Float64s())
	})
}

func TestColumn_FromArray(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues([]float64{1, 2}, []bool{true, false})
	arr := b.NewArray()
	defer arr.Release()

	col, err := series.FromArray("x", arr)
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, schema.Float, col.Type())
	assert.True(t, col.Descriptor().Nullable)

	bb := array.NewBooleanBuilder(mem)
	defer bb.Release()
	bools := bb.NewArray()
	defer bools.Release()
	_, err = series.FromArray("b", bools)
	assert.Error(t, err)
}

func TestValue_Format(t *testing.T) {
	tests := []struct {
		name     string
		value    series.Value
		expected string
	}{
		{"integer", series.Int(-12), "-12"},
		{"whole float", series.Float(3), "3.0"},
		{"fractional float", series.Float(2.25), "2.25"},
		{"large float stays decimal", series.Float(1e21), "1000000000000000000000.0"},
		{"text", series.Text("abc"), "abc"},
		{"null", series.Null(schema.Integer), "NA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Format("NA"))
		})
	}
}

func TestValue_Interface(t *testing.T) {
	assert.Equal(t, int64(4), series.Int(4).Interface())
	assert.InDelta(t, 4.5, series.Float(4.5).Interface(), 1e-12)
	assert.Equal(t, "x", series.Text("x").Interface())
	assert.Nil(t, series.Null(schema.Text).Interface())
	assert.InDelta(t, 4.0, series.Int(4).Float64(), 1e-12)
}
