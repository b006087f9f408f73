// Package sql runs ad-hoc queries against a loaded Table.
//
// The query language is not implemented here. The SQLiteEngine copies the
// Table into a private in-memory SQLite database under the relation name
// "data", runs the query text verbatim, and converts the result set back
// into a Table so it can be formatted like any other result.
package sql

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// RelationName is the table name queries refer to
const RelationName = "data"

const driverName = "sqlite"

// Engine executes a query against a Table and returns the result as a Table
type Engine interface {
	Query(ctx context.Context, table *dataframe.Table, query string) (*dataframe.Table, error)
}

// SQLiteEngine is an Engine backed by an in-memory SQLite database that
// lives for a single Query call.
type SQLiteEngine struct {
	mem    memory.Allocator
	logger *zap.Logger
}

// NewSQLiteEngine creates a new engine. A nil allocator selects the Go allocator.
func NewSQLiteEngine(mem memory.Allocator) *SQLiteEngine {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &SQLiteEngine{mem: mem, logger: zap.NewNop()}
}

// WithLogger sets the logger used for debug output
func (e *SQLiteEngine) WithLogger(logger *zap.Logger) *SQLiteEngine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Query registers table as "data" and runs query. Every failure, including
// engine rejections, is a QueryError carrying the engine's message.
func (e *SQLiteEngine) Query(ctx context.Context, table *dataframe.Table, query string) (*dataframe.Table, error) {
	if strings.TrimSpace(query) == "" {
		return nil, dserrors.NewQueryError("query is empty", nil)
	}

	db, err := stdsql.Open(driverName, ":memory:")
	if err != nil {
		return nil, dserrors.NewQueryError("opening database", err)
	}
	defer func() { _ = db.Close() }()
	// every :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	if err := e.register(ctx, db, table); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, dserrors.NewQueryError("query failed", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := e.collect(rows)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query executed",
		zap.String("query", query),
		zap.Int("rows", result.Len()),
		zap.Int("columns", result.Width()))
	return result, nil
}

// register creates the relation and inserts every row in one transaction
func (e *SQLiteEngine) register(ctx context.Context, db *stdsql.DB, table *dataframe.Table) error {
	cols := table.Schema().Columns()
	if len(cols) == 0 {
		// SQLite tables need at least one column; queries that do not
		// touch the relation still run.
		return nil
	}

	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		defs[i] = names[i] + " " + columnType(c.Type)
		marks[i] = "?"
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(RelationName), strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return dserrors.NewQueryError("creating relation", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return dserrors.NewQueryError("starting transaction", err)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(RelationName), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return dserrors.NewQueryError("preparing insert", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(cols))
	for r := range table.Len() {
		for c := range cols {
			args[c] = table.ColumnAt(c).Value(r).Interface()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return dserrors.NewQueryError(fmt.Sprintf("inserting row %d", r), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return dserrors.NewQueryError("committing relation", err)
	}

	e.logger.Debug("relation registered",
		zap.String("relation", RelationName),
		zap.Int("rows", table.Len()),
		zap.Int("columns", len(cols)))
	return nil
}

// collect scans the result set into columns. Column types follow the
// values SQLite actually returned: all integers stay Integer, a mix of
// integers and reals becomes Float, anything else is Text.
func (e *SQLiteEngine) collect(rows *stdsql.Rows) (*dataframe.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, dserrors.NewQueryError("reading result columns", err)
	}
	declared := make([]string, len(names))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			declared[i] = ct.DatabaseTypeName()
		}
	}

	var records [][]any
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, dserrors.NewQueryError("scanning result row", err)
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, dserrors.NewQueryError("query failed", err)
	}

	names = schema.Disambiguate(names)
	cols := make([]*series.Column, len(names))
	for c, name := range names {
		values := make([]series.Value, len(records))
		for r, record := range records {
			values[r] = toValue(record[c])
		}
		cols[c] = series.FromValues(name, resultType(values, declared[c]), values, e.mem)
	}

	table, err := dataframe.NewTable(cols...)
	if err != nil {
		for _, c := range cols {
			c.Release()
		}
		return nil, err
	}
	return table, nil
}

func toValue(v any) series.Value {
	switch x := v.(type) {
	case nil:
		return series.Null(schema.Text)
	case int64:
		return series.Int(x)
	case float64:
		return series.Float(x)
	case bool:
		if x {
			return series.Int(1)
		}
		return series.Int(0)
	case []byte:
		return series.Text(string(x))
	case string:
		return series.Text(x)
	default:
		return series.Text(fmt.Sprint(x))
	}
}

func resultType(values []series.Value, declared string) schema.Type {
	ints, floats, texts := 0, 0, 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		switch v.Type() {
		case schema.Integer:
			ints++
		case schema.Float:
			floats++
		default:
			texts++
		}
	}
	switch {
	case texts > 0:
		return schema.Text
	case floats > 0:
		return schema.Float
	case ints > 0:
		return schema.Integer
	default:
		return declaredType(declared)
	}
}

// declaredType maps a SQLite declared type for all-null result columns
func declaredType(name string) schema.Type {
	switch strings.ToUpper(name) {
	case "INTEGER", "INT", "BIGINT":
		return schema.Integer
	case "REAL", "FLOAT", "DOUBLE":
		return schema.Float
	default:
		return schema.Text
	}
}

func columnType(t schema.Type) string {
	switch t {
	case schema.Integer:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
