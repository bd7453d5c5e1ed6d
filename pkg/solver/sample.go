package solver

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/factortree/pkg/infer"
	"github.com/matzehuels/factortree/pkg/model"
	"github.com/matzehuels/factortree/pkg/observability"
	"github.com/matzehuels/factortree/pkg/ops"
)

// SampleOptions configures Sample.
type SampleOptions struct {
	// VarOrder is the elimination order; missing variables are clamped to
	// their InitState values.
	VarOrder []int
	// MaxComplexity bounds the decomposition complexity.
	MaxComplexity float64
	// NumSamples is the number of exact Boltzmann samples to draw. Zero
	// computes only the log partition function (and marginals, if asked).
	NumSamples int
	// InitState supplies clamped-variable values; nil means all zeros.
	InitState []int
	// MinVars raises the variable count above what the tables mention.
	MinVars int
	// Seed seeds the sampler; negative means time-derived. Ignored when
	// Rng is set.
	Seed int64
	// Rng overrides the random source.
	Rng ops.Source
	// Marginals requests single-variable and pairwise marginals.
	Marginals bool
	// Interrupt, when non-nil, is polled between samples; returning true
	// stops the run and returns the samples drawn so far.
	Interrupt func() bool
}

// Marginal is one normalised marginal distribution: a scope of one or two
// variables and one probability per scope assignment, packed in table
// order.
type Marginal struct {
	Scope  []int     `json:"scope"`
	Values []float64 `json:"values"`
}

// SampleResult holds the log partition function, the drawn samples as
// domain-index rows, and the requested marginals.
type SampleResult struct {
	RunID     string
	LogZ      float64
	Samples   [][]int
	Marginals []Marginal
}

// Sample draws exact Boltzmann samples with probability proportional to
// exp(sum of table values), and computes the log partition function.
func Sample(ctx context.Context, specs []model.TableSpec, opts SampleOptions) (*SampleResult, error) {
	start := time.Now()
	hooks := observability.Solver()

	result, err := sample(ctx, specs, opts)
	hooks.OnSolveComplete(ctx, "sample", time.Since(start), err)
	return result, err
}

func sample(ctx context.Context, specs []model.TableSpec, opts SampleOptions) (*SampleResult, error) {
	tables, err := model.Tables(specs)
	if err != nil {
		return nil, err
	}
	rng := opts.Rng
	if rng == nil {
		rng = rngFromSeed(opts.Seed)
	}
	task, err := infer.NewTask(tables, ops.NewLogSumOps(rng), opts.MinVars)
	if err != nil {
		return nil, err
	}
	observability.Solver().OnSolveStart(ctx, "sample", task.NumVars())

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

	solvable := opts.NumSamples > 0
	bt, err := infer.NewBucketTree[float64, []int](task, dec, x0, solvable, opts.Marginals)
	if err != nil {
		return nil, err
	}

	result := &SampleResult{
		RunID: uuid.NewString(),
		LogZ:  bt.ProblemValue(),
	}
	for i := 0; i < opts.NumSamples; i++ {
		if opts.Interrupt != nil && opts.Interrupt() {
			break
		}
		s, err := bt.Solve()
		if err != nil {
			return nil, err
		}
		result.Samples = append(result.Samples, s)
	}

	if opts.Marginals {
		result.Marginals, err = marginals(bt)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// marginals extracts single-variable marginals for every node variable and
// pairwise marginals for every input pairwise scope realised as a
// (nodeVar, sepVar) pair in the bucket tree. Pairs never realised keep
// zero values, matching the upstream behaviour.
func marginals(bt *infer.BucketTree[float64, []int]) ([]Marginal, error) {
	task := bt.Task()
	nodeTables, err := bt.NodeTables()
	if err != nil {
		return nil, err
	}
	merger := infer.NewMerger(task)
	marg := task.Ops().Marginalizer()

	var singles []Marginal
	type pairKey struct{ u, v int }
	pairs := make(map[pairKey][]float64)
	for _, t := range task.Tables() {
		if vars := t.Vars(); len(vars) == 2 {
			k := pairKey{u: vars[0].Index, v: vars[1].Index}
			if _, ok := pairs[k]; !ok {
				pairs[k] = make([]float64, vars[0].DomSize*vars[1].DomSize)
			}
		}
	}
	filled := make(map[pairKey]bool)

	for _, nt := range nodeTables {
		m, err := merger.Merge([]int{nt.NodeVar}, nt.Tables, marg)
		if err != nil {
			return nil, err
		}
		singles = append(singles, Marginal{
			Scope:  []int{nt.NodeVar},
			Values: normalize(m.Values()),
		})

		for _, sv := range nt.SepVars {
			k := pairKey{u: min(nt.NodeVar, sv), v: max(nt.NodeVar, sv)}
			if _, ok := pairs[k]; !ok || filled[k] {
				continue
			}
			pm, err := merger.Merge([]int{k.u, k.v}, nt.Tables, marg)
			if err != nil {
				return nil, err
			}
			pairs[k] = normalize(pm.Values())
			filled[k] = true
		}
	}

	slices.SortFunc(singles, func(a, b Marginal) int { return a.Scope[0] - b.Scope[0] })
	pairKeys := make([]pairKey, 0, len(pairs))
	for k := range pairs {
		pairKeys = append(pairKeys, k)
	}
	slices.SortFunc(pairKeys, func(a, b pairKey) int {
		if a.u != b.u {
			return a.u - b.u
		}
		return a.v - b.v
	})

	out := singles
	for _, k := range pairKeys {
		out = append(out, Marginal{Scope: []int{k.u, k.v}, Values: pairs[k]})
	}
	return out, nil
}

// normalize turns log-weights into probabilities summing to one.
func normalize(logWeights []float64) []float64 {
	logZ := ops.LogSumExp(logWeights)
	out := make([]float64, len(logWeights))
	for i, lw := range logWeights {
		out[i] = math.Exp(lw - logZ)
	}
	return out
}
