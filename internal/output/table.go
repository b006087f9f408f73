package output

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/paveg/dscribe/internal/dataframe"
)

// TableFormatter outputs a bordered text table
type TableFormatter struct {
	writer    io.Writer
	nullToken string
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer, nullToken string) *TableFormatter {
	return &TableFormatter{writer: w, nullToken: nullToken}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes the rendered table
func (f *TableFormatter) Format(t *dataframe.Table) error {
	_, err := io.WriteString(f.writer, Render(t, f.nullToken))
	return err
}

var controlReplacer = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", " ")

// Render lays t out as an aligned table:
//
//	+---+------+
//	| a | b    |
//	+===+======+
//	| 1 | null |
//	+---+------+
//
// Each column is as wide as its widest header or cell in terminal cells,
// numeric columns are right-aligned, and nulls render as nullToken. A table
// without columns renders as the empty string.
func Render(t *dataframe.Table, nullToken string) string {
	if t.Width() == 0 {
		return ""
	}

	headers := t.Columns()
	numeric := make([]bool, t.Width())
	widths := make([]int, t.Width())
	for c, name := range headers {
		numeric[c] = t.ColumnAt(c).Type().IsNumeric()
		widths[c] = runewidth.StringWidth(name)
	}

	cells := make([][]string, t.Len())
	for r := range cells {
		row := t.Row(r)
		cells[r] = make([]string, len(row))
		for c, v := range row {
			s := controlReplacer.Replace(v.Format(nullToken))
			cells[r][c] = s
			widths[c] = max(widths[c], runewidth.StringWidth(s))
		}
	}

	var sb strings.Builder
	writeRule(&sb, widths, '-')
	writeRow(&sb, headers, widths, nil)
	if len(cells) == 0 {
		writeRule(&sb, widths, '-')
		return sb.String()
	}
	writeRule(&sb, widths, '=')
	for _, row := range cells {
		writeRow(&sb, row, widths, numeric)
	}
	writeRule(&sb, widths, '-')
	return sb.String()
}

func writeRule(sb *strings.Builder, widths []int, fill byte) {
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

// writeRow writes one line; rightAlign may be nil for headers
func writeRow(sb *strings.Builder, values []string, widths []int, rightAlign []bool) {
	sb.WriteByte('|')
	for c, v := range values {
		sb.WriteByte(' ')
		if rightAlign != nil && rightAlign[c] {
			sb.WriteString(runewidth.FillLeft(v, widths[c]))
		} else {
			sb.WriteString(runewidth.FillRight(v, widths[c]))
		}
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}
