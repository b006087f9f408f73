package dispatch

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/dscribe/internal/config"
	"github.com/paveg/dscribe/internal/dataframe"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"github.com/paveg/dscribe/internal/monitoring"
	"github.com/paveg/dscribe/internal/schema"
	"github.com/paveg/dscribe/internal/series"
	"github.com/paveg/dscribe/internal/sql"
	"go.uber.org/zap"
)

// Dispatcher answers operations against one loaded Table. It holds no
// state between calls.
type Dispatcher struct {
	table   *dataframe.Table
	cfg     config.Config
	engine  sql.Engine
	mem     memory.Allocator
	logger  *zap.Logger
	metrics *monitoring.MetricsCollector
}

// NewDispatcher creates a dispatcher over table. The table stays owned by
// the caller and must outlive every Dispatch call.
func NewDispatcher(table *dataframe.Table, cfg config.Config) *Dispatcher {
	mem := memory.NewGoAllocator()
	return &Dispatcher{
		table:  table,
		cfg:    cfg,
		engine: sql.NewSQLiteEngine(mem),
		mem:    mem,
		logger: zap.NewNop(),
	}
}

// WithEngine replaces the query engine used by SQL operations
func (d *Dispatcher) WithEngine(engine sql.Engine) *Dispatcher {
	if engine != nil {
		d.engine = engine
	}
	return d
}

// WithLogger sets the logger, sharing it with the reductions and with the
// built-in SQLite engine
func (d *Dispatcher) WithLogger(logger *zap.Logger) *Dispatcher {
	if logger != nil {
		d.logger = logger
		if engine, ok := d.engine.(*sql.SQLiteEngine); ok {
			engine.WithLogger(logger)
		}
	}
	return d
}

// WithMetrics records the materialize stage on collector
func (d *Dispatcher) WithMetrics(collector *monitoring.MetricsCollector) *Dispatcher {
	d.metrics = collector
	return d
}

// Dispatch builds the plan for op and materializes it. The result is owned
// by the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation) (*dataframe.Table, error) {
	var result *dataframe.Table
	err := d.metrics.RecordStage("materialize", func() (int, error) {
		var err error
		result, err = d.dispatch(ctx, op)
		if err != nil {
			return 0, err
		}
		return result.Len(), nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.Debug("operation dispatched",
		zap.String("operation", op.Name()),
		zap.Int("rows", result.Len()),
		zap.Int("columns", result.Width()))
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, op Operation) (*dataframe.Table, error) {
	lf := d.table.Lazy().WithOptions(dataframe.CollectOptions{
		ParallelThreshold: d.cfg.ParallelThreshold,
		Workers:           d.cfg.WorkerPoolSize,
		Allocator:         d.mem,
		Logger:            d.logger,
	})

	switch o := op.(type) {
	case Head:
		return d.collect(ctx, lf.Limit(DefaultRows))
	case Show:
		return d.collect(ctx, lf.Limit(o.N))
	case Sample:
		return d.collect(ctx, lf.Sample(o.N, d.cfg.SampleSeed))
	case Columns:
		return d.columns()
	case Summary, BasicStatistics:
		return d.collect(ctx, lf.Reduce(dataframe.Summary))
	case Count, Mean, Median, Mode, Sum, Nan, NotNan:
		return d.collect(ctx, lf.Reduce(reductions[o.Name()]))
	case SQL:
		return d.engine.Query(ctx, d.table, o.Query)
	default:
		return nil, dserrors.NewUnsupportedOperationError(op.Name())
	}
}

func (d *Dispatcher) collect(ctx context.Context, lf *dataframe.LazyFrame) (*dataframe.Table, error) {
	d.logger.Debug("materializing plan", zap.Stringer("plan", lf))
	return lf.CollectContext(ctx)
}

// columns returns a single Text row holding the column names, one cell per
// column, so every output format carries them.
func (d *Dispatcher) columns() (*dataframe.Table, error) {
	names := d.table.Columns()
	cols := make([]*series.Column, len(names))
	for i, name := range names {
		cols[i] = series.FromValues(name, schema.Text, []series.Value{series.Text(name)}, d.mem)
	}
	return dataframe.NewTable(cols...)
}
