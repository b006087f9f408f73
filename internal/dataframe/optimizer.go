package dataframe

// QueryOptimizer applies rewrite rules to a plan before materialization.
// Every rule preserves the result of applying the operations in order.
type QueryOptimizer struct {
	rules []OptimizationRule
}

// OptimizationRule represents a single optimization transformation
type OptimizationRule interface {
	Apply(plan *ExecutionPlan) *ExecutionPlan
	Name() string
}

// ExecutionPlan represents a planned execution over a source table
type ExecutionPlan struct {
	source     *Table
	operations []LazyOperation
}

// NewQueryOptimizer creates a new optimizer with default rules
func NewQueryOptimizer() *QueryOptimizer {
	return &QueryOptimizer{
		rules: []OptimizationRule{
			&ProjectionPushdownRule{},
			&LimitFusionRule{},
		},
	}
}

// Optimize applies all optimization rules to the execution plan
func (qo *QueryOptimizer) Optimize(plan *ExecutionPlan) *ExecutionPlan {
	optimized := plan
	for _, rule := range qo.rules {
		optimized = rule.Apply(optimized)
	}
	return optimized
}

// CreateExecutionPlan wraps a source and its pending operations
func CreateExecutionPlan(source *Table, operations []LazyOperation) *ExecutionPlan {
	return &ExecutionPlan{
		source:     source,
		operations: append([]LazyOperation(nil), operations...),
	}
}

// Operations returns the planned operations
func (p *ExecutionPlan) Operations() []LazyOperation {
	return append([]LazyOperation(nil), p.operations...)
}

// ProjectionPushdownRule moves a Select ahead of directly preceding row
// operations (Limit, Sample) so that only selected columns are sliced or
// copied. Row operations never depend on column values, so the swap is safe.
type ProjectionPushdownRule struct{}

func (r *ProjectionPushdownRule) Name() string { return "ProjectionPushdown" }

func (r *ProjectionPushdownRule) Apply(plan *ExecutionPlan) *ExecutionPlan {
	ops := append([]LazyOperation(nil), plan.operations...)
	for i := 1; i < len(ops); i++ {
		if _, ok := ops[i].(*SelectOperation); !ok {
			continue
		}
		for j := i; j > 0 && isRowOperation(ops[j-1]); j-- {
			ops[j-1], ops[j] = ops[j], ops[j-1]
		}
	}
	return &ExecutionPlan{source: plan.source, operations: ops}
}

func isRowOperation(op LazyOperation) bool {
	switch op.(type) {
	case *LimitOperation, *SampleOperation:
		return true
	default:
		return false
	}
}

// LimitFusionRule merges consecutive non-negative limits into the smaller one
type LimitFusionRule struct{}

func (r *LimitFusionRule) Name() string { return "LimitFusion" }

func (r *LimitFusionRule) Apply(plan *ExecutionPlan) *ExecutionPlan {
	ops := make([]LazyOperation, 0, len(plan.operations))
	for _, op := range plan.operations {
		cur, ok := op.(*LimitOperation)
		if ok && len(ops) > 0 {
			if prev, ok := ops[len(ops)-1].(*LimitOperation); ok && prev.n >= 0 && cur.n >= 0 {
				ops[len(ops)-1] = &LimitOperation{n: min(prev.n, cur.n)}
				continue
			}
		}
		ops = append(ops, op)
	}
	return &ExecutionPlan{source: plan.source, operations: ops}
}
