// Package order produces elimination orders under a complexity budget.
//
// Greedy repeatedly eliminates the cheapest variable under one of four
// heuristics (min-degree, weighted min-degree, min-fill, weighted
// min-fill), breaking ties at random within a window scaled by the
// caller. When no variable can be eliminated within the budget, a
// variable is clamped instead, chosen by clamp rank. The resulting order,
// fed to the tree-decomposition builder, always respects the budget.
package order

import (
	"math"
	"slices"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/graph"
	"github.com/matzehuels/factortree/pkg/ops"
)

// Heuristic selects the elimination-cost function.
type Heuristic int

const (
	// MinDegree costs a variable by its current degree.
	MinDegree Heuristic = iota
	// WeightedMinDegree costs a variable by its domain size times the sum
	// of its neighbours' domain sizes.
	WeightedMinDegree
	// MinFill costs a variable by the number of edges its elimination
	// would add among its neighbours.
	MinFill
	// WeightedMinFill weights each added edge {u, w} by the product of the
	// endpoint domain sizes.
	WeightedMinFill
)

// ParseHeuristic maps a name to a heuristic. Accepted names are
// "min-deg", "w-min-deg", "min-fill" and "w-min-fill".
func ParseHeuristic(name string) (Heuristic, error) {
	switch name {
	case "min-deg":
		return MinDegree, nil
	case "w-min-deg":
		return WeightedMinDegree, nil
	case "min-fill":
		return MinFill, nil
	case "w-min-fill":
		return WeightedMinFill, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidArg, "unknown heuristic %q", name)
}

// String returns the canonical heuristic name.
func (h Heuristic) String() string {
	switch h {
	case MinDegree:
		return "min-deg"
	case WeightedMinDegree:
		return "w-min-deg"
	case MinFill:
		return "min-fill"
	case WeightedMinFill:
		return "w-min-fill"
	}
	return "unknown"
}

// Problem is the view of a task the heuristic needs: variable count,
// domain sizes, and the primal graph.
type Problem interface {
	NumVars() int
	DomSize(v int) int
	Graph() *graph.Graph
}

// Options configures a greedy ordering run.
type Options struct {
	// MaxComplexity bounds the decomposition complexity of the result.
	MaxComplexity float64
	// ClampRanks holds one integer per variable. Negative ranks clamp the
	// variable immediately; otherwise, when clamping becomes necessary,
	// candidates are confined to the lowest rank present. After each
	// clamp, ranks strictly above the clamped one are decremented so the
	// relative clamp order is preserved. Nil means all zeros.
	ClampRanks []int
	// Heuristic selects the cost function.
	Heuristic Heuristic
	// Rng supplies uniform draws in [0, 1); exactly one draw is consumed
	// per eliminated or clamped variable.
	Rng ops.Source
	// SelectionScale widens (>1) or narrows (<1) the random tie-break
	// window. Zero makes every pick deterministic.
	SelectionScale float64
}

type variable struct {
	index      int
	domSize    float64
	processed  bool
	clampRank  int
	clampValue float64
	cost       float64
	complexity float64
	adj        map[int]struct{}
}

// Greedy computes an elimination order for p. Variables left out of the
// returned order are clamped. Fails with INVALID_ARG when ClampRanks is
// non-nil with the wrong length or the heuristic is unknown.
func Greedy(p Problem, opts Options) ([]int, error) {
	numVars := p.NumVars()
	ranks := opts.ClampRanks
	if ranks == nil {
		ranks = make([]int, numVars)
	}
	if len(ranks) != numVars {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"clamp ranks have %d entries for %d variables", len(ranks), numVars)
	}
	if opts.Heuristic < MinDegree || opts.Heuristic > WeightedMinFill {
		return nil, errors.New(errors.ErrCodeInvalidArg, "unknown heuristic %d", opts.Heuristic)
	}
	if numVars == 0 {
		return nil, nil
	}

	g := p.Graph()
	vars := make([]*variable, numVars)
	for v := 0; v < numVars; v++ {
		vv := &variable{
			index:     v,
			domSize:   float64(p.DomSize(v)),
			processed: ranks[v] < 0,
			clampRank: ranks[v],
			adj:       make(map[int]struct{}, g.Degree(v)),
		}
		for _, w := range g.Neighbors(v) {
			if ranks[w] >= 0 {
				vv.adj[w] = struct{}{}
			}
		}
		vars[v] = vv
	}
	for _, vv := range vars {
		updateVarData(vv, vars, opts.Heuristic)
	}

	var order []int
	lastClampRank := -1

	for {
		inBudget, anyUnprocessed := costOrder(vars, opts.MaxComplexity)
		if !anyUnprocessed {
			break
		}

		if len(inBudget) > 0 {
			ties := 1
			for ties < len(inBudget) && inBudget[ties].cost == inBudget[0].cost {
				ties++
			}
			v := selectVar(inBudget, ties, opts.Rng, opts.SelectionScale)

			order = append(order, v.index)
			affected := affectedVars(v, vars, opts.Heuristic)
			v.processed = true
			for u := range v.adj {
				uv := vars[u]
				for w := range v.adj {
					if w != u {
						uv.adj[w] = struct{}{}
					}
				}
				delete(uv.adj, v.index)
			}
			for _, u := range affected {
				updateVarData(vars[u], vars, opts.Heuristic)
			}
			continue
		}

		// Nothing fits: clamp. Pending rank decrements from the previous
		// clamp are applied lazily, just before the next pick.
		if lastClampRank >= 0 {
			for _, vv := range vars {
				if !vv.processed && vv.clampRank > lastClampRank {
					vv.clampRank--
				}
			}
		}
		candidates := clampOrder(vars)
		group := 1
		for group < len(candidates) && candidates[group].clampRank == candidates[0].clampRank {
			group++
		}
		ties := 1
		for ties < group && candidates[ties].clampValue == candidates[0].clampValue {
			ties++
		}
		v := selectVar(candidates[:group], ties, opts.Rng, opts.SelectionScale)

		lastClampRank = v.clampRank
		v.processed = true
		for u := range v.adj {
			delete(vars[u].adj, v.index)
		}
		for u := range v.adj {
			updateVarData(vars[u], vars, opts.Heuristic)
		}
	}

	return order, nil
}

// costOrder returns the unprocessed variables whose elimination fits the
// budget, sorted by (cost, index), and whether any unprocessed variable
// remains at all.
func costOrder(vars []*variable, maxComplexity float64) ([]*variable, bool) {
	var inBudget []*variable
	any := false
	for _, vv := range vars {
		if vv.processed {
			continue
		}
		any = true
		if vv.complexity <= maxComplexity {
			inBudget = append(inBudget, vv)
		}
	}
	slices.SortFunc(inBudget, func(a, b *variable) int {
		if a.cost != b.cost {
			if a.cost < b.cost {
				return -1
			}
			return 1
		}
		return a.index - b.index
	})
	return inBudget, any
}

// clampOrder returns the unprocessed variables sorted by (clamp rank
// ascending, clamp value descending, index).
func clampOrder(vars []*variable) []*variable {
	var out []*variable
	for _, vv := range vars {
		if !vv.processed {
			out = append(out, vv)
		}
	}
	slices.SortFunc(out, func(a, b *variable) int {
		if a.clampRank != b.clampRank {
			return a.clampRank - b.clampRank
		}
		if a.clampValue != b.clampValue {
			if a.clampValue > b.clampValue {
				return -1
			}
			return 1
		}
		return a.index - b.index
	})
	return out
}

// selectVar picks one candidate at random from a window of the sorted
// list. The window starts at the tie group and is scaled by
// selectionScale, clamped to the candidate count. One draw is consumed on
// every call.
func selectVar(sorted []*variable, ties int, rng ops.Source, selectionScale float64) *variable {
	window := math.Min(float64(ties)*selectionScale, float64(len(sorted)))
	pick := int(math.Floor(window * rng()))
	if pick < 0 {
		pick = 0
	}
	if pick > len(sorted)-1 {
		pick = len(sorted) - 1
	}
	return sorted[pick]
}

// updateVarData recomputes the derived fields of one variable from its
// current adjacency. Must run after all adjacency updates of a step.
func updateVarData(v *variable, vars []*variable, h Heuristic) {
	v.clampValue = v.domSize * float64(len(v.adj))
	cplx := v.domSize
	for u := range v.adj {
		cplx *= vars[u].domSize
	}
	v.complexity = math.Log2(cplx)

	switch h {
	case MinDegree:
		v.cost = float64(len(v.adj))
	case WeightedMinDegree:
		sum := 0.0
		for u := range v.adj {
			sum += vars[u].domSize
		}
		v.cost = v.domSize * sum
	case MinFill:
		v.cost = float64(countFill(v, vars))
	case WeightedMinFill:
		v.cost = weightedFill(v, vars)
	}
}

// countFill counts the non-edges among v's neighbours.
func countFill(v *variable, vars []*variable) int {
	fill := 0
	adj := sortedAdj(v)
	for i, u := range adj {
		uAdj := vars[u].adj
		for _, w := range adj[i+1:] {
			if _, ok := uAdj[w]; !ok {
				fill++
			}
		}
	}
	return fill
}

// weightedFill sums domSize(u)*domSize(w) over the non-edges {u, w} among
// v's neighbours.
func weightedFill(v *variable, vars []*variable) float64 {
	cost := 0.0
	adj := sortedAdj(v)
	for i, u := range adj {
		uAdj := vars[u].adj
		for _, w := range adj[i+1:] {
			if _, ok := uAdj[w]; !ok {
				cost += vars[u].domSize * vars[w].domSize
			}
		}
	}
	return cost
}

// affectedVars lists the variables whose cost may change when v is
// eliminated: the neighbours for the degree heuristics, neighbours plus
// second neighbours for the fill heuristics.
func affectedVars(v *variable, vars []*variable, h Heuristic) []int {
	set := make(map[int]struct{}, len(v.adj))
	for u := range v.adj {
		set[u] = struct{}{}
	}
	if h == MinFill || h == WeightedMinFill {
		for u := range v.adj {
			for w := range vars[u].adj {
				set[w] = struct{}{}
			}
		}
		delete(set, v.index)
	}
	out := make([]int, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

func sortedAdj(v *variable) []int {
	out := make([]int, 0, len(v.adj))
	for u := range v.adj {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}
