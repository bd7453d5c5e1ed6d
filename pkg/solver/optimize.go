package solver

import (
	"context"
	"time"

	"github.com/matzehuels/factortree/pkg/infer"
	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/observability"
	"github.com/matzehuels/factortree/pkg/ops"
)

// OptimizeOptions configures Optimize.
type OptimizeOptions struct {
	// VarOrder is the elimination order; missing variables are clamped to
	// their InitState values.
	VarOrder []int
	// MaxComplexity bounds the decomposition complexity.
	MaxComplexity float64
	// MaxSolutions is the number of best assignments to return. Zero
	// returns only the scalar optimum.
	MaxSolutions int
	// InitState supplies clamped-variable values; nil means all zeros.
	InitState []int
	// MinVars raises the variable count above what the tables mention.
	MinVars int
	// Maximize flips the objective, returning the k largest energies.
	Maximize bool
}

// OptimizeResult holds the optimum and, when requested, the k best
// assignments by increasing energy, ties broken lexicographically over
// domain indices.
type OptimizeResult struct {
	Energies []float64
	States   [][]int
}

// Optimize finds the lowest-energy configurations of the table sum.
func Optimize(ctx context.Context, specs []model.TableSpec, opts OptimizeOptions) (*OptimizeResult, error) {
	start := time.Now()
	hooks := observability.Solver()

	result, err := optimize(ctx, specs, opts)
	hooks.OnSolveComplete(ctx, "optimize", time.Since(start), err)
	return result, err
}

func optimize(ctx context.Context, specs []model.TableSpec, opts OptimizeOptions) (*OptimizeResult, error) {
	tables, err := model.Tables(specs)
	if err != nil {
		return nil, err
	}
	algebra := ops.NewMinOps[float64]()
	if opts.Maximize {
		algebra.Less = func(a, b float64) bool { return a > b }
	}
	task, err := infer.NewTask(tables, algebra, opts.MinVars)
	if err != nil {
		return nil, err
	}
	observability.Solver().OnSolveStart(ctx, "optimize", task.NumVars())

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

	solvable := opts.MaxSolutions > 0
	bt, err := infer.NewBucketTree[float64, *ops.MinSolutionSet[float64]](task, dec, x0, solvable, false)
	if err != nil {
		return nil, err
	}
	baseValue := bt.ProblemValue()
	if !solvable {
		return &OptimizeResult{Energies: []float64{baseValue}}, nil
	}

	algebra.MaxSolutions = opts.MaxSolutions
	set, err := bt.Solve()
	if err != nil {
		return nil, err
	}
	result := &OptimizeResult{}
	for _, sol := range set.Solutions() {
		result.Energies = append(result.Energies, baseValue+sol.Value)
		result.States = append(result.States, sol.Solution)
	}
	return result, nil
}
