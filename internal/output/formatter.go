// Package output renders result Tables.
//
// Supported formats:
//   - table: bordered, aligned text table (the default)
//   - csv: header row plus one record per row; nulls are empty fields
//   - json: JSON Lines, one object per row with keys in column order
//
// Example usage:
//
//	formatter, err := output.New("table", os.Stdout, "null")
//	if err != nil {
//	    return err
//	}
//	return formatter.Format(result)
package output

import (
	"fmt"
	"io"

	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
)

// Format names accepted by New
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes the table in the formatter's specific format
	Format(t *dataframe.Table) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter registered under format
func New(format string, w io.Writer, nullToken string) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return NewTableFormatter(w, nullToken), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, dserrors.NewInvalidInputError("Format", fmt.Sprintf("unknown output format %q", format))
	}
}
