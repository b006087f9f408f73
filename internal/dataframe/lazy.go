package dataframe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	dserrors "github.com/paveg/dscribe/internal/errors"
	"go.uber.org/zap"
)

// LazyOperation represents a deferred operation on a Table
type LazyOperation interface {
	Apply(t *Table, env *execEnv) (*Table, error)
	String() string
}

// execEnv carries materialization settings to each operation
type execEnv struct {
	ctx               context.Context
	mem               memory.Allocator
	parallelThreshold int
	workers           int
	logger            *zap.Logger
}

// SelectOperation represents a column selection operation
type SelectOperation struct {
	columns []string
}

func (s *SelectOperation) Apply(t *Table, _ *execEnv) (*Table, error) {
	return t.Select(s.columns...)
}

func (s *SelectOperation) String() string {
	return fmt.Sprintf("select(%s)", strings.Join(s.columns, ", "))
}

// LimitOperation keeps the first n rows
type LimitOperation struct {
	n int
}

func (l *LimitOperation) Apply(t *Table, _ *execEnv) (*Table, error) {
	if l.n < 0 {
		return nil, dserrors.NewInvalidInputError("Limit", fmt.Sprintf("row count must be non-negative, got %d", l.n))
	}
	return t.Slice(0, l.n), nil
}

func (l *LimitOperation) String() string {
	return fmt.Sprintf("limit(%d)", l.n)
}

// SampleOperation keeps n rows drawn without replacement, in original order
type SampleOperation struct {
	n    int
	seed int64
}

func (s *SampleOperation) Apply(t *Table, env *execEnv) (*Table, error) {
	if s.n < 0 {
		return nil, dserrors.NewInvalidInputError("Sample", fmt.Sprintf("row count must be non-negative, got %d", s.n))
	}
	if s.n >= t.Len() {
		return t.Retain(), nil
	}
	seed := uint64(s.seed) //nolint:gosec // seed bits are reinterpreted, not truncated
	rng := rand.New(rand.NewPCG(seed, seed))
	indices := rng.Perm(t.Len())[:s.n]
	slices.Sort(indices)
	return t.Take(indices, env.mem), nil
}

func (s *SampleOperation) String() string {
	return fmt.Sprintf("sample(%d, seed=%d)", s.n, s.seed)
}

// ReduceOperation collapses every column with a reduction
type ReduceOperation struct {
	reduction Reduction
}

func (r *ReduceOperation) Apply(t *Table, env *execEnv) (*Table, error) {
	return reduceTable(t, r.reduction, reduceOptions{
		ctx:               env.ctx,
		parallelThreshold: env.parallelThreshold,
		workers:           env.workers,
		mem:               env.mem,
		logger:            env.logger,
	})
}

func (r *ReduceOperation) String() string {
	return fmt.Sprintf("reduce(%s)", r.reduction)
}

// CollectOptions controls materialization
type CollectOptions struct {
	// ParallelThreshold is the minimum row count for parallel reductions (0 = never)
	ParallelThreshold int
	// Workers is the worker pool size (0 = runtime.NumCPU())
	Workers int
	// Allocator backs newly built columns (nil = Go allocator)
	Allocator memory.Allocator
	// DisableOptimizer applies operations exactly as appended
	DisableOptimizer bool
	// Logger receives warnings about statistics a summary had to leave null (nil = no-op)
	Logger *zap.Logger
}

// LazyFrame holds a Table and a sequence of deferred operations.
// It does not own the Table; every transformation returns a new LazyFrame.
type LazyFrame struct {
	source     *Table
	operations []LazyOperation
	options    CollectOptions
}

// Lazy converts a Table to a LazyFrame
func (t *Table) Lazy() *LazyFrame {
	return &LazyFrame{source: t}
}

// with returns a copy of lf with op appended
func (lf *LazyFrame) with(op LazyOperation) *LazyFrame {
	ops := make([]LazyOperation, len(lf.operations), len(lf.operations)+1)
	copy(ops, lf.operations)
	return &LazyFrame{
		source:     lf.source,
		operations: append(ops, op),
		options:    lf.options,
	}
}

// WithOptions returns a copy of lf that materializes with opts
func (lf *LazyFrame) WithOptions(opts CollectOptions) *LazyFrame {
	return &LazyFrame{
		source:     lf.source,
		operations: lf.operations,
		options:    opts,
	}
}

// Select adds a column selection operation to the lazy frame
func (lf *LazyFrame) Select(columns ...string) *LazyFrame {
	return lf.with(&SelectOperation{columns: append([]string(nil), columns...)})
}

// Limit adds a row limit to the lazy frame
func (lf *LazyFrame) Limit(n int) *LazyFrame {
	return lf.with(&LimitOperation{n: n})
}

// Sample adds a seeded random row sample to the lazy frame
func (lf *LazyFrame) Sample(n int, seed int64) *LazyFrame {
	return lf.with(&SampleOperation{n: n, seed: seed})
}

// Reduce adds a per-column reduction to the lazy frame
func (lf *LazyFrame) Reduce(r Reduction) *LazyFrame {
	return lf.with(&ReduceOperation{reduction: r})
}

// Operations returns the pending operations in append order
func (lf *LazyFrame) Operations() []LazyOperation {
	return append([]LazyOperation(nil), lf.operations...)
}

// Collect executes all deferred operations and returns the resulting Table
func (lf *LazyFrame) Collect() (*Table, error) {
	return lf.CollectContext(context.Background())
}

// CollectContext executes all deferred operations in order against the
// source Table. The returned Table is owned by the caller and stays valid
// after the source is released.
func (lf *LazyFrame) CollectContext(ctx context.Context) (*Table, error) {
	if lf.source == nil {
		return nil, dserrors.NewInvalidInputError("Collect", "lazy frame has no source table")
	}

	operations := lf.operations
	if !lf.options.DisableOptimizer {
		operations = NewQueryOptimizer().Optimize(CreateExecutionPlan(lf.source, operations)).operations
	}

	mem := lf.options.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	logger := lf.options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env := &execEnv{
		ctx:               ctx,
		mem:               mem,
		parallelThreshold: lf.options.ParallelThreshold,
		workers:           lf.options.Workers,
		logger:            logger,
	}

	current := lf.source.Retain()
	for _, op := range operations {
		if err := ctx.Err(); err != nil {
			current.Release()
			return nil, err
		}
		next, err := op.Apply(current, env)
		current.Release()
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op, err)
		}
		current = next
	}
	return current, nil
}

// String returns a string representation of the lazy frame and its operations
func (lf *LazyFrame) String() string {
	var sb strings.Builder
	sb.WriteString("LazyFrame:\n")
	if lf.source != nil {
		sb.WriteString(fmt.Sprintf("  source: %d rows x %d columns\n", lf.source.Len(), lf.source.Width()))
	}
	if len(lf.operations) == 0 {
		sb.WriteString("  operations: none\n")
		return sb.String()
	}
	sb.WriteString("  operations:\n")
	for i, op := range lf.operations {
		sb.WriteString(fmt.Sprintf("    %d. %s\n", i+1, op))
	}
	return sb.String()
}
