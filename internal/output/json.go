package output

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/paveg/dscribe/internal/dataframe"
	"github.com/paveg/dscribe/internal/series"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *JSONFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes one JSON object per row. Keys follow column order; nulls
// are JSON null and numbers keep their type.
func (f *JSONFormatter) Format(t *dataframe.Table) error {
	encoder := gojson.NewEncoder(f.writer)
	encoder.SetEscapeHTML(false)
	names := t.Columns()
	for r := range t.Len() {
		if err := encoder.Encode(orderedRow{names: names, values: t.Row(r)}); err != nil {
			return err
		}
	}
	return nil
}

// orderedRow marshals as an object whose keys keep column order
type orderedRow struct {
	names  []string
	values []series.Value
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.MarshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := gojson.MarshalNoEscape(o.values[i].Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
