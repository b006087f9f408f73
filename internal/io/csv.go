package io

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/config"
	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"go.uber.org/zap"
)

// Formats recognised by name. Only FormatCSV is read by the core.
const (
	FormatCSV     = "csv"
	FormatText    = "txt"
	FormatParquet = "parquet"
	FormatExcel   = "excel"
)

// ReadRows reads every record. Rows may differ in width; width checks
// belong to schema inference so they surface as SchemaErrors.
func (r *CSVReader) ReadRows() ([][]string, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return nil, &dserrors.DescribeError{
				Kind:    dserrors.KindParse,
				Op:      "Read",
				Message: fmt.Sprintf("malformed delimited text at line %d", parseErr.Line),
				Cause:   parseErr.Err,
			}
		}
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}

// Read reads CSV data and returns a Table
func (r *CSVReader) Read() (*dataframe.Table, error) {
	records, err := r.ReadRows()
	if err != nil {
		return nil, err
	}
	return r.build(records)
}

// build infers a schema from the leading rows and parses every data row
// against it.
func (r *CSVReader) build(records [][]string) (*dataframe.Table, error) {
	sch, err := schema.Infer(records, schema.InferOptions{
		Header:     r.options.Header,
		SampleSize: r.options.SampleSize,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("schema inferred",
		zap.Int("columns", sch.Len()),
		zap.Int("sample_size", r.options.SampleSize),
		zap.Stringer("schema", sch))

	dataRows := records
	if r.options.Header && len(records) > 0 {
		dataRows = records[1:]
	}

	// Inference only checks the sample; every row must match the width.
	for i, row := range dataRows {
		if len(row) != sch.Len() {
			line := i + 1
			if r.options.Header {
				line++
			}
			return nil, dserrors.NewSchemaError("Load",
				fmt.Sprintf("row %d has %d fields, expected %d", line, len(row), sch.Len()))
		}
	}

	columns := make([]*series.Column, 0, sch.Len())
	cells := make([]string, len(dataRows))
	for c, desc := range sch.Columns() {
		for i, row := range dataRows {
			cells[i] = row[c]
		}
		col, degraded := series.Build(desc, cells, r.mem)
		if degraded > 0 {
			r.logger.Warn("cells did not match inferred type and were loaded as null",
				zap.String("column", desc.Name),
				zap.Stringer("type", desc.Type),
				zap.Int("cells", degraded))
		}
		columns = append(columns, col)
	}

	table, err := dataframe.NewTable(columns...)
	if err != nil {
		for _, c := range columns {
			c.Release()
		}
		return nil, err
	}
	return table, nil
}

// CheckFormat returns an UnsupportedFormat error for anything but csv
func CheckFormat(format string) error {
	if strings.EqualFold(format, FormatCSV) {
		return nil
	}
	return dserrors.NewUnsupportedFormatError(format)
}

// Load opens path and reads it into a Table according to cfg
func Load(ctx context.Context, path string, cfg config.Config, mem memory.Allocator, logger *zap.Logger) (*dataframe.Table, error) {
	if err := CheckFormat(cfg.Format); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dserrors.NewIOError("Load", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, dserrors.NewIOError("Load", path, err)
	}
	if info.IsDir() {
		return nil, dserrors.NewIOError("Load", path, fmt.Errorf("is a directory"))
	}

	logger.Debug("loading file",
		zap.String("path", path),
		zap.String("delimiter", cfg.Delimiter),
		zap.Bool("header", cfg.Header),
		zap.Int64("bytes", info.Size()))

	var reader DataReader = NewCSVReader(f, OptionsFromConfig(cfg), mem).WithLogger(logger)
	table, err := reader.Read()
	if err != nil {
		return nil, err
	}

	logger.Debug("table loaded", zap.Int("rows", table.Len()), zap.Int("columns", table.Width()))
	return table, nil
}
