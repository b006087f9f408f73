package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	dserrors "github.com/paveg/dscribe/internal/errors"
)

// DefaultSampleSize is the number of data rows inspected when no size is given.
const DefaultSampleSize = 1000

// InferOptions controls type inference.
type InferOptions struct {
	// Header indicates whether the first row contains column names
	Header bool
	// SampleSize bounds the number of data rows inspected (0 = DefaultSampleSize)
	SampleSize int
}

// IsEmpty reports whether a raw cell denotes a missing value.
func IsEmpty(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

// ParseInteger parses a cell as a base-10 64-bit integer.
func ParseInteger(cell string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	return v, err == nil
}

// ParseFloat parses a cell as a finite 64-bit float. NaN and infinity
// spellings are rejected so that word columns stay Text.
func ParseFloat(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// columnVote tracks which types every non-empty sampled cell still satisfies
type columnVote struct {
	canBeInt   bool
	canBeFloat bool
	nonEmpty   int
	nullable   bool
}

func (v *columnVote) observe(cell string) {
	if IsEmpty(cell) {
		v.nullable = true
		return
	}
	v.nonEmpty++
	if v.canBeInt {
		if _, ok := ParseInteger(cell); !ok {
			v.canBeInt = false
		}
	}
	if v.canBeFloat {
		if _, ok := ParseFloat(cell); !ok {
			v.canBeFloat = false
		}
	}
}

func (v *columnVote) result() (Type, bool) {
	switch {
	case v.nonEmpty == 0:
		return Text, true
	case v.canBeInt:
		return Integer, v.nullable
	case v.canBeFloat:
		return Float, v.nullable
	default:
		return Text, v.nullable
	}
}

// Infer determines one ColumnDescriptor per column from a prefix of raw rows.
//
// When opts.Header is set the first row supplies the names, which are
// normalized and disambiguated; otherwise names are column_0, column_1, ...
// Every non-empty sampled cell votes: Integer if all parse as integers, else
// Float if all parse as floats, else Text. Empty cells only mark the column
// nullable. A column with no non-empty sampled cell is nullable Text.
//
// A data row whose width differs from the header is a SchemaError, and a
// sampled cell that is not valid UTF-8 is a ParseError.
func Infer(rows [][]string, opts InferOptions) (*Schema, error) {
	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	var names []string
	data := rows
	switch {
	case opts.Header && len(rows) > 0:
		names = make([]string, len(rows[0]))
		for i, raw := range rows[0] {
			names[i] = NormalizeName(raw)
		}
		names = Disambiguate(names)
		data = rows[1:]
	case !opts.Header && len(rows) > 0:
		names = make([]string, len(rows[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i)
		}
	default:
		return New()
	}

	if len(data) > sampleSize {
		data = data[:sampleSize]
	}

	votes := make([]columnVote, len(names))
	for i := range votes {
		votes[i] = columnVote{canBeInt: true, canBeFloat: true}
	}

	for r, row := range data {
		if len(row) != len(names) {
			return nil, dserrors.NewSchemaError("Infer",
				fmt.Sprintf("row %d has %d fields, expected %d", rowNumber(r, opts.Header), len(row), len(names)))
		}
		for c, cell := range row {
			if !utf8.ValidString(cell) {
				return nil, dserrors.NewParseError("Infer", names[c],
					fmt.Sprintf("row %d is not valid UTF-8", rowNumber(r, opts.Header)))
			}
			votes[c].observe(cell)
		}
	}

	cols := make([]ColumnDescriptor, len(names))
	for i, name := range names {
		typ, nullable := votes[i].result()
		cols[i] = ColumnDescriptor{Name: name, Type: typ, Nullable: nullable}
	}
	return New(cols...)
}

// rowNumber converts a data row offset to a 1-based line of the source file.
func rowNumber(offset int, header bool) int {
	if header {
		return offset + 2
	}
	return offset + 1
}
