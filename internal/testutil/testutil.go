// Package testutil provides common testing utilities shared by the dscribe
// packages: checked allocators, CSV fixtures on disk and in memory, and
// table assertions.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/dataframe"
	dsio "github.com/paveg/dscribe/internal/io"
	"github.com/paveg/dscribe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ScenarioCSV is the reference fixture: two integer columns, one null.
const ScenarioCSV = "a,b\n1,2\n3,\n5,6\n"

// TestMemoryContext provides a checked allocator that fails the test when
// Arrow buffers leak.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every buffer allocated through the context was freed.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// WriteFile writes content to a file in a per-test temp dir and returns its path.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TableFromCSV reads comma-separated content with a header row. The table
// is released when the test finishes.
func TableFromCSV(tb testing.TB, content string) *dataframe.Table {
	tb.Helper()
	return TableFromCSVWithOptions(tb, content, dsio.DefaultCSVOptions())
}

// TableFromCSVWithOptions reads content with explicit reader options.
func TableFromCSVWithOptions(tb testing.TB, content string, opts dsio.CSVOptions) *dataframe.Table {
	tb.Helper()
	table, err := dsio.NewCSVReader(strings.NewReader(content), opts, memory.NewGoAllocator()).Read()
	require.NoError(tb, err)
	tb.Cleanup(table.Release)
	return table
}

// CellStrings renders every cell of t with "null" for missing values.
func CellStrings(t *dataframe.Table) [][]string {
	rows := make([][]string, t.Len())
	for i := range rows {
		row := t.Row(i)
		rows[i] = make([]string, len(row))
		for c, v := range row {
			rows[i][c] = v.String()
		}
	}
	return rows
}

// AssertColumnValues asserts the values of a named column.
func AssertColumnValues(tb testing.TB, t *dataframe.Table, name string, expected ...series.Value) {
	tb.Helper()
	col, ok := t.Column(name)
	require.True(tb, ok, "column %q not found", name)
	assert.Equal(tb, expected, col.Values(), "column %q", name)
}
