package ops

import (
	"slices"

	"github.com/matzehuels/factortree/pkg/table"
)

// Value constrains the scalar types usable with the min-plus algebra.
type Value interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// MinOps is the min-plus algebra: combine is pointwise addition and the
// marginalizer takes the extremum of a unary table under Less.
//
// Less orders objective values; nil means natural ascending order
// (minimisation). Supplying a descending comparator turns every operation
// into its k-max dual.
//
// MaxSolutions bounds the solution sets produced by Solve; it may be set
// any time before the downward pass. Use the same *MinOps value for the
// task and the bucket tree so the setting is observed.
type MinOps[Y Value] struct {
	Less         func(a, b Y) bool
	MaxSolutions int
}

// NewMinOps returns a minimising algebra with a solution bound of one.
func NewMinOps[Y Value]() *MinOps[Y] {
	return &MinOps[Y]{MaxSolutions: 1}
}

func (o *MinOps[Y]) less(a, b Y) bool {
	if o.Less != nil {
		return o.Less(a, b)
	}
	return a < b
}

// Combine implements pointwise addition.
func (o *MinOps[Y]) Combine(a, b Y) Y { return a + b }

// CombineIdentity returns the additive identity.
func (o *MinOps[Y]) CombineIdentity() Y { var zero Y; return zero }

// Marginalizer returns a stateless extremum marginalizer.
func (o *MinOps[Y]) Marginalizer() Marginalizer[Y] {
	return minMarginalizer[Y]{ops: o}
}

// SolvableMarginalizer returns a marginalizer that records, per context,
// every candidate value of the eliminated variable relative to the
// extremum, enabling k-best reconstruction during the downward pass.
func (o *MinOps[Y]) SolvableMarginalizer(ctxScope, ctxDomSizes []int, outVar, outDomSize int) SolvableMarginalizer[Y, *MinSolutionSet[Y]] {
	return &solvableMinMarginalizer[Y]{
		ops:    o,
		steps:  buildSteps(ctxScope, ctxDomSizes),
		outVar: outVar,
		cands:  make(map[int][]minCandidate[Y]),
	}
}

// InitSolution returns a solution set holding the single seed assignment
// x0 at the identity value, with capacity MaxSolutions.
func (o *MinOps[Y]) InitSolution(x0 []int) *MinSolutionSet[Y] {
	s := NewMinSolutionSet[Y](o.MaxSolutions, o.less)
	s.Insert(MinSolution[Y]{Value: o.CombineIdentity(), Solution: slices.Clone(x0)})
	return s
}

type minMarginalizer[Y Value] struct {
	ops *MinOps[Y]
}

func (m minMarginalizer[Y]) Marginalize(_ int, slice *table.Table[Y]) Y {
	vals := slice.Values()
	best := vals[0]
	for _, v := range vals[1:] {
		if m.ops.less(v, best) {
			best = v
		}
	}
	return best
}

// minCandidate is one extension of a context: setting the eliminated
// variable to index costs delta relative to the context's extremum.
type minCandidate[Y Value] struct {
	delta Y
	index int
}

type solvableMinMarginalizer[Y Value] struct {
	ops    *MinOps[Y]
	steps  []varStep
	outVar int
	cands  map[int][]minCandidate[Y]
}

func (m *solvableMinMarginalizer[Y]) Marginalize(outIndex int, slice *table.Table[Y]) Y {
	vals := slice.Values()
	best := vals[0]
	for _, v := range vals[1:] {
		if m.ops.less(v, best) {
			best = v
		}
	}
	cands := make([]minCandidate[Y], len(vals))
	for i, v := range vals {
		cands[i] = minCandidate[Y]{delta: v - best, index: i}
	}
	slices.SortFunc(cands, func(a, b minCandidate[Y]) int {
		if m.ops.less(a.delta, b.delta) {
			return -1
		}
		if m.ops.less(b.delta, a.delta) {
			return 1
		}
		return a.index - b.index
	})
	m.cands[outIndex] = cands
	return best
}

func (m *solvableMinMarginalizer[Y]) Solve(s *MinSolutionSet[Y]) {
	out := NewMinSolutionSet[Y](s.Capacity(), s.valueLess)
	for _, sol := range s.Solutions() {
		ctx := contextIndex(m.steps, sol.Solution)
		for _, c := range m.cands[ctx] {
			ext := slices.Clone(sol.Solution)
			ext[m.outVar] = c.index
			out.Insert(MinSolution[Y]{Value: sol.Value + c.delta, Solution: ext})
		}
	}
	s.sols = out.sols
}
