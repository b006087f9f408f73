// Package io provides the file reader collaborator and the table loader.
//
// CSVReader yields raw rows from delimited text; Load drives it through
// type inference and column construction to produce a Table. Only
// delimited text is read: the other container formats a caller may name are
// rejected with an UnsupportedFormat error before the file is opened.
//
// Memory management: Tables returned by Read and Load own Arrow buffers and
// must be released by the caller.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/config"
	"github.com/paveg/dscribe/internal/dataframe"
	"go.uber.org/zap"
)

// RowReader yields raw rows as sequences of string cells
type RowReader interface {
	// ReadRows returns every row of the source in order
	ReadRows() ([][]string, error)
}

// DataReader defines the interface for reading a Table from a source
type DataReader interface {
	// Read reads data from the source and returns a Table
	Read() (*dataframe.Table, error)
}

var (
	_ RowReader  = (*CSVReader)(nil)
	_ DataReader = (*CSVReader)(nil)
)

// CSVOptions contains configuration options for CSV reading
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// SampleSize bounds the rows inspected by type inference
	SampleSize int
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: false,
		SampleSize:       config.DefaultSampleSize,
	}
}

// OptionsFromConfig derives reader options from the invocation config
func OptionsFromConfig(cfg config.Config) CSVOptions {
	opts := DefaultCSVOptions()
	opts.Delimiter = cfg.DelimiterRune()
	opts.Header = cfg.Header
	if cfg.SampleSize > 0 {
		opts.SampleSize = cfg.SampleSize
	}
	return opts
}

// CSVReader reads delimited text and converts it to Tables
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
	logger  *zap.Logger
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &CSVReader{
		reader:  reader,
		options: options,
		mem:     mem,
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger used to report degraded cells
func (r *CSVReader) WithLogger(logger *zap.Logger) *CSVReader {
	if logger != nil {
		r.logger = logger
	}
	return r
}
