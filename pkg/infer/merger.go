package infer

import (
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/table"
)

// Merger combines lists of tables into a single table over a requested
// scope, eliminating out-of-scope variables with an algebra marginalizer.
// The elimination order within one merge does not affect the result for
// the provided algebras (combine is commutative and associative).
type Merger[Y any] struct {
	o        ops.Ops[Y]
	domSizes []int
}

// NewMerger creates a merger for the given task.
func NewMerger[Y any](task *Task[Y]) *Merger[Y] {
	return &Merger[Y]{o: task.Ops(), domSizes: task.DomSizes()}
}

// Merge combines the input tables into one table over outScope (ascending).
// Variables appearing in the inputs but not in outScope are eliminated in
// ascending order, calling marg once per context with the unary slice over
// the eliminated variable.
func (m *Merger[Y]) Merge(outScope []int, inputs []*table.Table[Y], marg ops.Marginalizer[Y]) (*table.Table[Y], error) {
	scopes := make([][]int, 0, len(inputs)+1)
	scopes = append(scopes, outScope)
	for _, t := range inputs {
		scopes = append(scopes, t.Scope())
	}
	mergeScope := sortedUnion(scopes...)

	merged, err := m.combine(mergeScope, inputs)
	if err != nil {
		return nil, err
	}

	for _, v := range mergeScope {
		if contains(outScope, v) {
			continue
		}
		merged, err = m.eliminate(merged, v, marg)
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// combine fills a table over mergeScope with the pointwise combination of
// all inputs, each indexed by projecting the assignment to its scope.
func (m *Merger[Y]) combine(mergeScope []int, inputs []*table.Table[Y]) (*table.Table[Y], error) {
	doms := make([]int, len(mergeScope))
	for i, v := range mergeScope {
		doms[i] = m.domSizes[v]
	}
	merged, err := table.New[Y](mergeScope, doms)
	if err != nil {
		return nil, err
	}

	// Per-input stride for every merge-scope axis (zero when the input
	// does not mention the variable), so input indices advance with the
	// same odometer that walks the merged table.
	strides := make([][]int, len(inputs))
	for ti, t := range inputs {
		strides[ti] = make([]int, len(mergeScope))
		for d, v := range mergeScope {
			if p := t.VarPos(v); p >= 0 {
				strides[ti][d] = t.Vars()[p].Stride
			}
		}
	}

	counters := make([]int, len(mergeScope))
	inIdx := make([]int, len(inputs))
	for idx := 0; idx < merged.Size(); idx++ {
		value := m.o.CombineIdentity()
		for ti, t := range inputs {
			value = m.o.Combine(value, t.At(inIdx[ti]))
		}
		merged.Set(idx, value)

		for d := 0; d < len(counters); d++ {
			counters[d]++
			for ti := range inputs {
				inIdx[ti] += strides[ti][d]
			}
			if counters[d] < doms[d] {
				break
			}
			counters[d] = 0
			for ti := range inputs {
				inIdx[ti] -= doms[d] * strides[ti][d]
			}
		}
	}
	return merged, nil
}

// eliminate collapses variable v out of t, producing a table over the
// remaining scope whose entries are marg applied to the unary slice of v.
func (m *Merger[Y]) eliminate(t *table.Table[Y], v int, marg ops.Marginalizer[Y]) (*table.Table[Y], error) {
	pos := t.VarPos(v)
	elim := t.Vars()[pos]

	var outScope, outDoms []int
	var keptVars []table.Var
	for i, tv := range t.Vars() {
		if i == pos {
			continue
		}
		outScope = append(outScope, tv.Index)
		outDoms = append(outDoms, tv.DomSize)
		keptVars = append(keptVars, tv)
	}
	out, err := table.New[Y](outScope, outDoms)
	if err != nil {
		return nil, err
	}
	slice, err := table.New[Y]([]int{v}, []int{elim.DomSize})
	if err != nil {
		return nil, err
	}

	counters := make([]int, len(keptVars))
	base := 0
	for outIdx := 0; outIdx < out.Size(); outIdx++ {
		vals := slice.Values()
		for i := 0; i < elim.DomSize; i++ {
			vals[i] = t.At(base + i*elim.Stride)
		}
		out.Set(outIdx, marg.Marginalize(outIdx, slice))

		for d := 0; d < len(keptVars); d++ {
			counters[d]++
			base += keptVars[d].Stride
			if counters[d] < keptVars[d].DomSize {
				break
			}
			counters[d] = 0
			base -= keptVars[d].DomSize * keptVars[d].Stride
		}
	}
	return out, nil
}

func contains(sorted []int, v int) bool {
	for _, x := range sorted {
		if x == v {
			return true
		}
		if x > v {
			break
		}
	}
	return false
}
