package solver

import (
	"context"
	"time"

	"github.com/matzehuels/factortree/pkg/infer"
	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/observability"
	"github.com/matzehuels/factortree/pkg/ops"
)

// CountOptions configures CountOptima.
type CountOptions struct {
	// VarOrder is the elimination order; missing variables are clamped to
	// their InitState values.
	VarOrder []int
	// MaxComplexity bounds the decomposition complexity.
	MaxComplexity float64
	// Tolerance is the relative tolerance under which two energies count
	// as tied.
	Tolerance float64
	// InitState supplies clamped-variable values; nil means all zeros.
	InitState []int
	// MinVars raises the variable count above what the tables mention.
	MinVars int
}

// CountResult pairs the optimum with the number of assignments achieving
// it within the tolerance.
type CountResult struct {
	Value float64
	Count float64
}

// CountOptima computes the minimum of the table sum and the number of tied
// optima.
func CountOptima(ctx context.Context, specs []model.TableSpec, opts CountOptions) (*CountResult, error) {
	start := time.Now()
	hooks := observability.Solver()

	result, err := countOptima(ctx, specs, opts)
	hooks.OnSolveComplete(ctx, "count", time.Since(start), err)
	return result, err
}

func countOptima(ctx context.Context, specs []model.TableSpec, opts CountOptions) (*CountResult, error) {
	tables, err := model.CountTables(specs)
	if err != nil {
		return nil, err
	}
	task, err := infer.NewTask(tables, ops.NewCountOps(opts.Tolerance), opts.MinVars)
	if err != nil {
		return nil, err
	}
	observability.Solver().OnSolveStart(ctx, "count", task.NumVars())

	if err := model.ValidateOrder(opts.VarOrder, task.NumVars()); err != nil {
		return nil, err
	}
	x0, err := initState(opts.InitState, task.NumVars())
	if err != nil {
		return nil, err
	}
	dec, err := buildDecomp(task, opts.VarOrder, opts.MaxComplexity)
	if err != nil {
		return nil, err
	}
	observability.Solver().OnDecompBuilt(ctx, dec.Size(), dec.Complexity())

	bt, err := infer.NewBucketTree[ops.ValueCount, struct{}](task, dec, x0, false, false)
	if err != nil {
		return nil, err
	}
	pv := bt.ProblemValue()
	return &CountResult{Value: pv.Value, Count: pv.Count}, nil
}
