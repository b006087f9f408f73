package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/paveg/dscribe/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestExecute_Success(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", testutil.ScenarioCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "head is the default operation",
			args: []string{path},
			want: "" +
				"+---+------+\n" +
				"| a | b    |\n" +
				"+===+======+\n" +
				"| 1 |    2 |\n" +
				"| 3 | null |\n" +
				"| 5 |    6 |\n" +
				"+---+------+\n",
		},
		{
			name: "mean",
			args: []string{path, "mean"},
			want: "" +
				"+-----+-----+\n" +
				"| a   | b   |\n" +
				"+=====+=====+\n" +
				"| 3.0 | 4.0 |\n" +
				"+-----+-----+\n",
		},
		{
			name: "columns",
			args: []string{path, "columns"},
			want: "" +
				"+---+---+\n" +
				"| a | b |\n" +
				"+===+===+\n" +
				"| a | b |\n" +
				"+---+---+\n",
		},
		{
			name: "columns as json",
			args: []string{path, "columns", "-o", "json"},
			want: "{\"a\":\"a\",\"b\":\"b\"}\n",
		},
		{
			name: "columns as csv",
			args: []string{path, "columns", "-o", "csv"},
			want: "a,b\na,b\n",
		},
		{
			name: "show with csv output",
			args: []string{path, "show", "2", "-o", "csv"},
			want: "a,b\n1,2\n3,\n",
		},
		{
			name: "nan as json",
			args: []string{path, "nan", "--output", "json"},
			want: "{\"a\":0,\"b\":1}\n",
		},
		{
			name: "sql",
			args: []string{path, "sql", "SELECT sum(a) AS total FROM data", "-o", "csv"},
			want: "total\n9\n",
		},
		{
			name: "custom null token",
			args: []string{path, "show", "--null-token", "NA"},
			want: "" +
				"+---+----+\n" +
				"| a | b  |\n" +
				"+===+====+\n" +
				"| 1 |  2 |\n" +
				"| 3 | NA |\n" +
				"| 5 |  6 |\n" +
				"+---+----+\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := invoke(t, tt.args...)
			assert.Equal(t, 0, r.code, r.stderr)
			assert.Equal(t, tt.want, r.stdout)
			assert.Empty(t, r.stderr)
		})
	}
}

func TestExecute_ParsingFlags(t *testing.T) {
	path := testutil.WriteFile(t, "data.txt", "1;x\n2;y\n")

	r := invoke(t, path, "count", "-d", ";", "--header=false", "-o", "csv")
	assert.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "column_0,column_1\n2,2\n", r.stdout)
}

func TestExecute_HeaderOnlyFile(t *testing.T) {
	path := testutil.WriteFile(t, "empty.csv", "x,y\n")

	head := invoke(t, path, "head", "-o", "csv")
	assert.Equal(t, 0, head.code, head.stderr)
	assert.Equal(t, "x,y\n", head.stdout)

	summary := invoke(t, path, "summary", "-o", "csv")
	assert.Equal(t, 0, summary.code, summary.stderr)
	assert.Contains(t, summary.stdout, "mean,,\n")
}

func TestExecute_Failures(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", testutil.ScenarioCSV)
	ragged := testutil.WriteFile(t, "ragged.csv", "a,b\n1,2\n3\n")

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"unsupported format", []string{path, "-f", "excel"}, "UnsupportedFormat"},
		{"unsupported operation", []string{path, "pivot"}, "UnsupportedOperation"},
		{"missing file", []string{path + ".missing"}, "IoError"},
		{"width mismatch", []string{ragged}, "SchemaError"},
		{"bad sql", []string{path, "sql", "SELEC 1"}, "QueryError"},
		{"bad row count", []string{path, "show", "many"}, "InvalidInput"},
		{"bad delimiter", []string{path, "-d", "::"}, "Delimiter"},
		{"bad output", []string{path, "-o", "xml"}, "Output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := invoke(t, tt.args...)
			assert.Equal(t, 1, r.code)
			assert.Empty(t, r.stdout, "no partial output")
			assert.Contains(t, r.stderr, "Error: ")
			assert.Contains(t, r.stderr, tt.message)
		})
	}
}

func TestExecute_UsageGoesToStderr(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", testutil.ScenarioCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"too many arguments", []string{path, "show", "2", "extra"}},
		{"unknown flag", []string{path, "--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := invoke(t, tt.args...)
			assert.Equal(t, 1, r.code)
			assert.Empty(t, r.stdout)
			assert.Contains(t, r.stderr, "Error: ")
			assert.Contains(t, r.stderr, "Usage:")
		})
	}
}

func TestExecute_RuntimeErrorOmitsUsage(t *testing.T) {
	r := invoke(t, "/does/not/exist.csv")
	assert.Equal(t, 1, r.code)
	assert.Empty(t, r.stdout)
	assert.NotContains(t, r.stderr, "Usage:")
}

func TestExecute_Version(t *testing.T) {
	r := invoke(t, "--version")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "dscribe ")
}

func TestExecute_ConfigPrecedence(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", testutil.ScenarioCSV)
	cfgPath := testutil.WriteFile(t, "dscribe.yaml", "output: json\nnull_token: none\n")

	fromFile := invoke(t, path, "sum", "--config", cfgPath)
	assert.Equal(t, 0, fromFile.code, fromFile.stderr)
	assert.Equal(t, "{\"a\":9,\"b\":8}\n", fromFile.stdout)

	t.Setenv("DSCRIBE_OUTPUT", "csv")
	fromEnv := invoke(t, path, "sum", "--config", cfgPath)
	assert.Equal(t, "a,b\n9,8\n", fromEnv.stdout)

	fromFlag := invoke(t, path, "sum", "--config", cfgPath, "-o", "json")
	assert.Equal(t, "{\"a\":9,\"b\":8}\n", fromFlag.stdout)
}

func TestExecute_VerboseLogsToStderr(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", testutil.ScenarioCSV)

	r := invoke(t, path, "count", "--verbose", "--metrics", "-o", "csv")
	assert.Equal(t, 0, r.code)
	assert.Equal(t, "a,b\n3,2\n", r.stdout)
	assert.Contains(t, r.stderr, "table loaded")
	assert.Contains(t, r.stderr, "stage finished")
}
