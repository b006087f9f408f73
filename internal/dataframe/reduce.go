package dataframe

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow/memory"
	xxhash "github.com/cespare/xxhash/v2"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/parallel"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Reduction is a per-column aggregate that collapses a column to one value
type Reduction int

const (
	// Count is the number of non-null values
	Count Reduction = iota + 1
	// Sum is the arithmetic sum of numeric values; null for Text
	Sum
	// Mean is Sum / Count in floating point; null when Count is zero
	Mean
	// Median is the middle of the sorted non-null values
	Median
	// Mode is the most frequent non-null value, ties broken by first occurrence
	Mode
	// NullCount is the number of null values
	NullCount
	// NotNullCount is the number of non-null values
	NotNullCount
	// Summary applies every statistic in SummaryStatistics
	Summary
)

// SummaryStatistics lists the statistics assembled by Summary, in row order
var SummaryStatistics = []Reduction{Count, Sum, Mean, Median, Mode, NullCount, NotNullCount}

// StatisticColumn names the leading label column of a Summary result
const StatisticColumn = "statistic"

// String returns the statistic name used in plans and summary rows
func (r Reduction) String() string {
	switch r {
	case Count:
		return "count"
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Mode:
		return "mode"
	case NullCount:
		return "nan"
	case NotNullCount:
		return "not_nan"
	case Summary:
		return "summary"
	default:
		return fmt.Sprintf("reduction(%d)", int(r))
	}
}

// ResultType returns the type of r applied to a column of type t
func (r Reduction) ResultType(t schema.Type) schema.Type {
	switch r {
	case Count, NullCount, NotNullCount:
		return schema.Integer
	case Mean:
		return schema.Float
	case Median:
		if t == schema.Text {
			return schema.Text
		}
		return schema.Float
	case Summary:
		return schema.Text
	default:
		return t
	}
}

// ReduceColumn applies a single statistic to c. Nulls are excluded from
// every statistic except NullCount.
func ReduceColumn(c *series.Column, r Reduction) (series.Value, error) {
	switch r {
	case Count, NotNullCount:
		return series.Int(int64(c.Len() - c.NullCount())), nil
	case NullCount:
		return series.Int(int64(c.NullCount())), nil
	case Sum:
		return sumColumn(c)
	case Mean:
		return meanColumn(c)
	case Median:
		return medianColumn(c), nil
	case Mode:
		return modeColumn(c), nil
	default:
		return series.Value{}, dserrors.NewUnsupportedOperationError(r.String())
	}
}

func sumColumn(c *series.Column) (series.Value, error) {
	switch c.Type() {
	case schema.Integer:
		var acc int64
		for _, v := range c.Int64s() {
			next := acc + v
			if (v > 0 && next < acc) || (v < 0 && next > acc) {
				return series.Value{}, &dserrors.DescribeError{
					Kind:    dserrors.KindInvalidInput,
					Op:      Sum.String(),
					Column:  c.Name(),
					Message: "integer overflow",
				}
			}
			acc = next
		}
		return series.Int(acc), nil
	case schema.Float:
		var acc float64
		for _, v := range c.Float64s() {
			acc += v
		}
		return series.Float(acc), nil
	default:
		return series.Null(schema.Text), nil
	}
}

// meanColumn accumulates in float64, so integer columns whose sum
// overflows int64 still have a mean.
func meanColumn(c *series.Column) (series.Value, error) {
	switch c.Type() {
	case schema.Integer:
		return meanOf(c.Int64s()), nil
	case schema.Float:
		return meanOf(c.Float64s()), nil
	default:
		return series.Null(schema.Float), nil
	}
}

func meanOf[T constraints.Integer | constraints.Float](vals []T) series.Value {
	if len(vals) == 0 {
		return series.Null(schema.Float)
	}
	var acc float64
	for _, v := range vals {
		acc += float64(v)
	}
	return series.Float(acc / float64(len(vals)))
}

func medianColumn(c *series.Column) series.Value {
	switch c.Type() {
	case schema.Integer:
		return medianOf(c.Int64s())
	case schema.Float:
		return medianOf(c.Float64s())
	default:
		vals := c.Strings()
		if len(vals) == 0 {
			return series.Null(schema.Text)
		}
		slices.Sort(vals)
		// even counts take the lower middle; strings cannot be averaged
		return series.Text(vals[(len(vals)-1)/2])
	}
}

func medianOf[T constraints.Integer | constraints.Float](vals []T) series.Value {
	n := len(vals)
	if n == 0 {
		return series.Null(schema.Float)
	}
	slices.Sort(vals)
	if n%2 == 1 {
		return series.Float(float64(vals[n/2]))
	}
	return series.Float((float64(vals[n/2-1]) + float64(vals[n/2])) / 2)
}

func modeColumn(c *series.Column) series.Value {
	switch c.Type() {
	case schema.Integer:
		if v, ok := modeOf(c.Int64s()); ok {
			return series.Int(v)
		}
	case schema.Float:
		if v, ok := modeOf(c.Float64s()); ok {
			return series.Float(v)
		}
	default:
		if v, ok := textMode(c.Strings()); ok {
			return series.Text(v)
		}
	}
	return series.Null(c.Type())
}

// modeOf returns the most frequent value; the earliest value in row order
// wins ties because later candidates must strictly exceed the best count.
func modeOf[T comparable](vals []T) (T, bool) {
	var best T
	if len(vals) == 0 {
		return best, false
	}
	counts := make(map[T]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	bestCount := 0
	for _, v := range vals {
		if n := counts[v]; n > bestCount {
			best, bestCount = v, n
		}
	}
	return best, true
}

// textEntry is one distinct string within an xxhash bucket
type textEntry struct {
	value string
	count int
}

// textMode counts strings by their xxhash digest, resolving collisions
// within each bucket, so long values are hashed once rather than used as
// map keys.
func textMode(vals []string) (string, bool) {
	if len(vals) == 0 {
		return "", false
	}
	buckets := make(map[uint64][]textEntry, len(vals))
	hashes := make([]uint64, len(vals))
	for i, v := range vals {
		h := xxhash.Sum64String(v)
		hashes[i] = h
		entries := buckets[h]
		found := false
		for j := range entries {
			if entries[j].value == v {
				entries[j].count++
				found = true
				break
			}
		}
		if !found {
			buckets[h] = append(entries, textEntry{value: v, count: 1})
		}
	}

	best, bestCount := "", 0
	for i, v := range vals {
		for _, e := range buckets[hashes[i]] {
			if e.value == v && e.count > bestCount {
				best, bestCount = v, e.count
			}
		}
	}
	return best, true
}

// reduceOptions controls how a table is reduced
type reduceOptions struct {
	ctx               context.Context
	parallelThreshold int
	workers           int
	mem               memory.Allocator
	logger            *zap.Logger
}

// reduceTable applies r to every column of t and assembles a single-row
// table (or, for Summary, one row per statistic).
func reduceTable(t *Table, r Reduction, opts reduceOptions) (*Table, error) {
	stats := []Reduction{r}
	if r == Summary {
		stats = SummaryStatistics
	}

	perColumn, err := reduceColumns(t, stats, r == Summary, opts)
	if err != nil {
		return nil, err
	}

	if r == Summary {
		return assembleSummary(t, perColumn, opts.mem)
	}

	cols := make([]*series.Column, t.Width())
	for i := range cols {
		src := t.ColumnAt(i)
		cols[i] = series.FromValues(src.Name(), r.ResultType(src.Type()), perColumn[i], opts.mem)
	}
	return NewTable(cols...)
}

// reduceColumns computes stats for every column, in parallel when the
// table is large enough. Every column is attempted and all errors returned.
// With lenient set a failing statistic becomes a null cell and a warning
// instead of an error.
func reduceColumns(t *Table, stats []Reduction, lenient bool, opts reduceOptions) ([][]series.Value, error) {
	logger := opts.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	columns := make([]*series.Column, t.Width())
	for i := range columns {
		columns[i] = t.ColumnAt(i)
	}

	reduceOne := func(_ int, c *series.Column) ([]series.Value, error) {
		out := make([]series.Value, len(stats))
		var errs []error
		for s, stat := range stats {
			v, err := ReduceColumn(c, stat)
			if err != nil {
				out[s] = series.Null(stat.ResultType(c.Type()))
				if lenient {
					logger.Warn("statistic left null",
						zap.String("column", c.Name()),
						zap.String("statistic", stat.String()),
						zap.Error(err))
					continue
				}
				errs = append(errs, err)
				continue
			}
			out[s] = v
		}
		return out, errors.Join(errs...)
	}

	if opts.parallelThreshold > 0 && t.Len() >= opts.parallelThreshold && len(columns) > 1 {
		ctx := opts.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		return parallel.Map(ctx, parallel.NewWorkerPool(opts.workers), columns, reduceOne)
	}

	results := make([][]series.Value, len(columns))
	var errs []error
	for i, c := range columns {
		v, err := reduceOne(i, c)
		if err != nil {
			errs = append(errs, err)
		}
		results[i] = v
	}
	return results, errors.Join(errs...)
}

// assembleSummary lays statistics out as rows: a leading label column and
// one Text column per source column.
func assembleSummary(t *Table, perColumn [][]series.Value, mem memory.Allocator) (*Table, error) {
	names := schema.Disambiguate(append([]string{StatisticColumn}, t.Columns()...))

	labels := make([]series.Value, len(SummaryStatistics))
	for i, stat := range SummaryStatistics {
		labels[i] = series.Text(stat.String())
	}

	cols := make([]*series.Column, 0, t.Width()+1)
	cols = append(cols, series.FromValues(names[0], schema.Text, labels, mem))
	for i, values := range perColumn {
		cols = append(cols, series.FromValues(names[i+1], schema.Text, values, mem))
	}
	return NewTable(cols...)
}
