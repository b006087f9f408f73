package output_test

import (
	"bytes"
	"testing"

	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/output"
	"github.com/paveg/dscribe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"", output.FormatTable, output.FormatCSV, output.FormatJSON} {
		f, err := output.New(format, &bytes.Buffer{}, "null")
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := output.New("xml", &bytes.Buffer{}, "null")
	assert.ErrorIs(t, err, dserrors.ErrInvalidInput)
}

func TestCSVFormatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"scenario with null", testutil.ScenarioCSV, "a,b\n1,2\n3,\n5,6\n"},
		{"quotes delimiters", "name\n\"Doe, John\"\n", "name\n\"Doe, John\"\n"},
		{"header only", "x,y\n", "x,y\n"},
		{"no columns", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.NewCSVFormatter(&buf).Format(testutil.TableFromCSV(t, tt.content)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVFormatter_RoundTrip(t *testing.T) {
	table := testutil.TableFromCSV(t, "id,score,label\n1,2.5,x\n2,,y\n3,4.0,\n")

	var buf bytes.Buffer
	require.NoError(t, output.NewCSVFormatter(&buf).Format(table))

	reloaded := testutil.TableFromCSV(t, buf.String())
	assert.Equal(t, testutil.CellStrings(table), testutil.CellStrings(reloaded))
	assert.Equal(t, table.Schema().Columns(), reloaded.Schema().Columns())
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "keys keep column order",
			content: "z,a\n1,x\n,y\n",
			want:    "{\"z\":1,\"a\":\"x\"}\n{\"z\":null,\"a\":\"y\"}\n",
		},
		{
			name:    "floats",
			content: "v\n1.5\n",
			want:    "{\"v\":1.5}\n",
		},
		{
			name:    "header only writes nothing",
			content: "v\n",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.NewJSONFormatter(&buf).Format(testutil.TableFromCSV(t, tt.content)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
