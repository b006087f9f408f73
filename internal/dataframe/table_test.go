package dataframe_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"github.com/paveg/dscribe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("equal lengths", func(t *testing.T) {
		table, err := dataframe.NewTable(
			series.FromValues("id", schema.Integer, []series.Value{series.Int(1), series.Int(2)}, mem.Allocator),
			series.FromValues("name", schema.Text, []series.Value{series.Text("x"), series.Null(schema.Text)}, mem.Allocator),
		)
		require.NoError(t, err)
		defer table.Release()

		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 2, table.Width())
		assert.Equal(t, []string{"id", "name"}, table.Columns())
		assert.Equal(t, []series.Value{series.Int(2), series.Null(schema.Text)}, table.Row(1))
	})

	t.Run("length mismatch", func(t *testing.T) {
		a := series.FromValues("a", schema.Integer, []series.Value{series.Int(1)}, mem.Allocator)
		b := series.FromValues("b", schema.Integer, nil, mem.Allocator)
		defer a.Release()
		defer b.Release()

		_, err := dataframe.NewTable(a, b)
		assert.ErrorIs(t, err, dserrors.ErrSchema)
	})

	t.Run("duplicate names", func(t *testing.T) {
		a := series.FromValues("a", schema.Integer, nil, mem.Allocator)
		b := series.FromValues("a", schema.Text, nil, mem.Allocator)
		defer a.Release()
		defer b.Release()

		_, err := dataframe.NewTable(a, b)
		assert.ErrorIs(t, err, dserrors.ErrSchema)
	})
}

func TestTable_Select(t *testing.T) {
	table := testutil.TableFromCSV(t, "a,b,c\n1,x,2.5\n2,y,\n")

	t.Run("reorders columns", func(t *testing.T) {
		out, err := table.Select("c", "a")
		require.NoError(t, err)
		defer out.Release()

		assert.Equal(t, []string{"c", "a"}, out.Columns())
		assert.Equal(t, 2, out.Len())
		assert.Equal(t, schema.Float, out.Schema().Column(0).Type)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := table.Select("a", "missing")
		assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("no columns keeps the row count", func(t *testing.T) {
		out, err := table.Select()
		require.NoError(t, err)
		defer out.Release()

		assert.Equal(t, 0, out.Width())
		assert.Equal(t, 2, out.Len())
	})
}

func TestTable_SliceAndTake(t *testing.T) {
	table := testutil.TableFromCSV(t, testutil.ScenarioCSV)

	tests := []struct {
		name       string
		start, end int
		want       [][]string
	}{
		{"prefix", 0, 2, [][]string{{"1", "2"}, {"3", "null"}}},
		{"clamped end", 1, 10, [][]string{{"3", "null"}, {"5", "6"}}},
		{"empty", 0, 0, [][]string{}},
		{"start past end", 5, 9, [][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := table.Slice(tt.start, tt.end)
			defer out.Release()
			assert.Equal(t, tt.want, testutil.CellStrings(out))
			assert.Equal(t, table.Columns(), out.Columns())
		})
	}

	t.Run("take copies rows", func(t *testing.T) {
		out := table.Take([]int{2, 0}, memory.NewGoAllocator())
		defer out.Release()
		assert.Equal(t, [][]string{{"5", "6"}, {"1", "2"}}, testutil.CellStrings(out))
	})
}

func TestTable_Retain(t *testing.T) {
	table := testutil.TableFromCSV(t, testutil.ScenarioCSV)

	handle := table.Retain()
	handle.Release()

	// the original handle still reads valid data
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "null"}, {"5", "6"}}, testutil.CellStrings(table))
}

func TestEmpty(t *testing.T) {
	table := dataframe.Empty()
	defer table.Release()

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.Width())
	assert.Equal(t, "Table[empty]", table.String())
}
