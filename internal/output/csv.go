package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/paveg/dscribe/internal/dataframe"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *CSVFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes a header row and one record per row. Nulls are written as
// empty fields so the output loads back with the same nulls.
func (f *CSVFormatter) Format(t *dataframe.Table) error {
	if t.Width() == 0 {
		return nil
	}
	csvWriter := csv.NewWriter(f.writer)

	if err := csvWriter.Write(t.Columns()); err != nil {
		return err
	}

	record := make([]string, t.Width())
	for r := range t.Len() {
		for c, v := range t.Row(r) {
			record[c] = v.Format("")
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
