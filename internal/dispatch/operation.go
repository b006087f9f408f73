// Package dispatch maps a requested operation onto a LazyFrame plan and
// materializes it.
//
// Operation is a closed sum type: every variant is declared here and
// Dispatch switches over all of them, with an explicit default arm that
// reports UnsupportedOperation instead of panicking.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
)

// DefaultRows is the row count of head, and of show and sample without an argument
const DefaultRows = 5

// Operation is a user request. Implementations are the types in this package.
type Operation interface {
	// Name returns the operation as typed on the command line
	Name() string
	isOperation()
}

type (
	// Head returns the first DefaultRows rows
	Head struct{}
	// Show returns the first N rows
	Show struct{ N int }
	// Sample returns N rows drawn at random, in original order
	Sample struct{ N int }
	// Summary reduces every column with every statistic
	Summary struct{}
	// BasicStatistics is an alias of Summary
	BasicStatistics struct{}
	// Columns returns the column names without materializing rows
	Columns struct{}
	// Count returns the non-null count per column
	Count struct{}
	// Mean returns the mean per column
	Mean struct{}
	// Median returns the median per column
	Median struct{}
	// Mode returns the most frequent value per column
	Mode struct{}
	// Sum returns the sum per column
	Sum struct{}
	// Nan returns the null count per column
	Nan struct{}
	// NotNan returns the non-null count per column
	NotNan struct{}
	// SQL runs Query against the table through the query engine
	SQL struct{ Query string }
)

func (Head) Name() string            { return "head" }
func (Show) Name() string            { return "show" }
func (Sample) Name() string          { return "sample" }
func (Summary) Name() string         { return "summary" }
func (BasicStatistics) Name() string { return "basic_statistics" }
func (Columns) Name() string         { return "columns" }
func (Count) Name() string           { return "count" }
func (Mean) Name() string            { return "mean" }
func (Median) Name() string          { return "median" }
func (Mode) Name() string            { return "mode" }
func (Sum) Name() string             { return "sum" }
func (Nan) Name() string             { return "nan" }
func (NotNan) Name() string          { return "not_nan" }
func (SQL) Name() string             { return "sql" }

func (Head) isOperation()            {}
func (Show) isOperation()            {}
func (Sample) isOperation()          {}
func (Summary) isOperation()         {}
func (BasicStatistics) isOperation() {}
func (Columns) isOperation()         {}
func (Count) isOperation()           {}
func (Mean) isOperation()            {}
func (Median) isOperation()          {}
func (Mode) isOperation()            {}
func (Sum) isOperation()             {}
func (Nan) isOperation()             {}
func (NotNan) isOperation()          {}
func (SQL) isOperation()             {}

// reductions maps the single-statistic operations to their reducer
var reductions = map[string]dataframe.Reduction{
	"count":   dataframe.Count,
	"mean":    dataframe.Mean,
	"median":  dataframe.Median,
	"mode":    dataframe.Mode,
	"sum":     dataframe.Sum,
	"nan":     dataframe.NullCount,
	"not_nan": dataframe.NotNullCount,
}

// Parse resolves an operation name and its arguments. Names are case
// insensitive and "-" is accepted for "_". Unknown names are an
// UnsupportedOperation error; bad arguments are InvalidInput.
func Parse(name string, args []string) (Operation, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")

	switch key {
	case "", "head":
		return Head{}, noArgs(key, args)
	case "show":
		n, err := rowCount("show", args)
		return Show{N: n}, err
	case "sample":
		n, err := rowCount("sample", args)
		return Sample{N: n}, err
	case "summary", "describe":
		return Summary{}, noArgs(key, args)
	case "basic_statistics":
		return BasicStatistics{}, noArgs(key, args)
	case "columns":
		return Columns{}, noArgs(key, args)
	case "count":
		return Count{}, noArgs(key, args)
	case "mean":
		return Mean{}, noArgs(key, args)
	case "median":
		return Median{}, noArgs(key, args)
	case "mode":
		return Mode{}, noArgs(key, args)
	case "sum":
		return Sum{}, noArgs(key, args)
	case "nan":
		return Nan{}, noArgs(key, args)
	case "not_nan":
		return NotNan{}, noArgs(key, args)
	case "sql":
		if len(args) != 1 {
			return nil, dserrors.NewInvalidInputError("Parse", "sql expects exactly one query argument")
		}
		return SQL{Query: args[0]}, nil
	default:
		return nil, dserrors.NewUnsupportedOperationError(name)
	}
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return dserrors.NewInvalidInputError("Parse", fmt.Sprintf("%s takes no arguments, got %q", name, args))
	}
	return nil
}

// rowCount parses the optional row count of show and sample
func rowCount(name string, args []string) (int, error) {
	switch len(args) {
	case 0:
		return DefaultRows, nil
	case 1:
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return 0, dserrors.NewInvalidInputError("Parse", fmt.Sprintf("%s expects a row count, got %q", name, args[0]))
		}
		if n < 0 {
			return 0, dserrors.NewInvalidInputError("Parse", fmt.Sprintf("%s row count must be non-negative, got %d", name, n))
		}
		return n, nil
	default:
		return 0, dserrors.NewInvalidInputError("Parse", fmt.Sprintf("%s takes at most one argument, got %d", name, len(args)))
	}
}
