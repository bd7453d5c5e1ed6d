package solver

import (
	"context"
	"time"

	"github.com/matzehuels/factortree/pkg/infer"
	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/observability"
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/order"
)

// OrderOptions configures GreedyOrder.
type OrderOptions struct {
	// MaxComplexity bounds the decomposition complexity of the returned
	// order; variables are clamped when nothing cheaper fits.
	MaxComplexity float64
	// ClampRanks biases which variables get clamped; see order.Options.
	ClampRanks []int
	// Heuristic selects the elimination cost function.
	Heuristic order.Heuristic
	// SelectionScale widens or narrows the random tie-break window.
	SelectionScale float64
	// MinVars raises the variable count above what the tables mention.
	MinVars int
	// Seed seeds the tie-break generator; negative means time-derived.
	// Ignored when Rng is set.
	Seed int64
	// Rng overrides the random source.
	Rng ops.Source
}

// GreedyOrder computes an elimination order for the given tables under a
// complexity budget. Variables missing from the result are clamped.
func GreedyOrder(ctx context.Context, specs []model.TableSpec, opts OrderOptions) ([]int, error) {
	start := time.Now()
	hooks := observability.Solver()

	tables, err := model.UnitTables(specs)
	if err != nil {
		return nil, err
	}
	minVars := max(opts.MinVars, len(opts.ClampRanks))
	task, err := infer.NewTask(tables, ops.Dummy{}, minVars)
	if err != nil {
		return nil, err
	}

	hooks.OnOrderStart(ctx, opts.Heuristic.String(), task.NumVars())
	rng := opts.Rng
	if rng == nil {
		rng = rngFromSeed(opts.Seed)
	}
	elimOrder, err := order.Greedy(task, order.Options{
		MaxComplexity:  opts.MaxComplexity,
		ClampRanks:     opts.ClampRanks,
		Heuristic:      opts.Heuristic,
		Rng:            rng,
		SelectionScale: opts.SelectionScale,
	})
	hooks.OnOrderComplete(ctx, opts.Heuristic.String(), len(elimOrder), time.Since(start), err)
	return elimOrder, err
}
