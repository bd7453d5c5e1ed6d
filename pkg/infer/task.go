// Package infer implements the exact inference engine: tasks, table
// merging, and the two-pass bucket-tree algorithm.
//
// A Task owns the shared input tables together with everything derived
// from them (domain sizes, primal graph) and the algebra evaluating them.
// A BucketTree executes variable elimination over a tree decomposition of
// the task's graph, producing the problem value (optimum, log partition
// function, or tied-optimum count depending on the algebra), and
// optionally k-best solutions, Boltzmann samples, and per-node tables for
// marginal extraction.
package infer

import (
	"slices"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/graph"
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/table"
)

// Task holds the shared table list, the derived domain sizes and primal
// graph, and the algebra parameters. Tables are shared read-only; a Task
// and its tables may be used from multiple goroutines.
type Task[Y any] struct {
	tables   []*table.Table[Y]
	ops      ops.Ops[Y]
	domSizes []int
	graph    *graph.Graph
}

// NewTask builds a task from tables and an algebra. The variable count is
// the largest scope index plus one, or minVars if larger; variables not
// mentioned by any table get domain size one.
//
// Returns an INVALID_ARG error when two tables disagree on a variable's
// domain size.
func NewTask[Y any](tables []*table.Table[Y], o ops.Ops[Y], minVars int) (*Task[Y], error) {
	numVars := minVars
	for _, t := range tables {
		for _, tv := range t.Vars() {
			if tv.Index+1 > numVars {
				numVars = tv.Index + 1
			}
		}
	}

	domSizes := make([]int, numVars)
	for i := range domSizes {
		domSizes[i] = 1
	}
	var edges []graph.Edge
	for _, t := range tables {
		vars := t.Vars()
		for i, tv := range vars {
			if domSizes[tv.Index] != 1 && domSizes[tv.Index] != tv.DomSize {
				return nil, errors.New(errors.ErrCodeInvalidArg,
					"conflicting domain sizes for variable %d: %d and %d",
					tv.Index, domSizes[tv.Index], tv.DomSize)
			}
			domSizes[tv.Index] = tv.DomSize
			for _, tw := range vars[i+1:] {
				edges = append(edges, graph.Edge{U: tv.Index, V: tw.Index})
			}
		}
	}

	return &Task[Y]{
		tables:   tables,
		ops:      o,
		domSizes: domSizes,
		graph:    graph.New(edges, numVars),
	}, nil
}

// NumVars returns the number of variables.
func (t *Task[Y]) NumVars() int { return len(t.domSizes) }

// DomSize returns the domain size of variable v.
func (t *Task[Y]) DomSize(v int) int { return t.domSizes[v] }

// DomSizes returns the per-variable domain sizes. The slice is shared and
// must not be modified.
func (t *Task[Y]) DomSizes() []int { return t.domSizes }

// Graph returns the primal graph of the table scopes.
func (t *Task[Y]) Graph() *graph.Graph { return t.graph }

// Tables returns the shared input tables.
func (t *Task[Y]) Tables() []*table.Table[Y] { return t.tables }

// Ops returns the task's algebra.
func (t *Task[Y]) Ops() ops.Ops[Y] { return t.ops }

// BaseTables returns the input tables belonging to the given bucket: those
// whose scope contains the node variable and fits inside the bucket's
// scope ({nodeVar} union separator union the node's clamped variables).
// Clamped scope variables are projected out at their x0 values. Together
// with the clamped-only tables consumed by ProblemValue this partitions
// the input list, so no table is counted twice across the tree.
func (t *Task[Y]) BaseTables(n *decomp.Node, x0 []int) []*table.Table[Y] {
	bucket := make(map[int]bool, 1+len(n.SepVars)+len(n.ClampedVars))
	bucket[n.Var] = true
	for _, v := range n.SepVars {
		bucket[v] = true
	}
	clamped := make(map[int]bool, len(n.ClampedVars))
	for _, v := range n.ClampedVars {
		bucket[v] = true
		clamped[v] = true
	}

	var out []*table.Table[Y]
	for _, tab := range t.tables {
		if !tab.HasVar(n.Var) {
			continue
		}
		fits := true
		hasClamped := false
		for _, tv := range tab.Vars() {
			if !bucket[tv.Index] {
				fits = false
				break
			}
			if clamped[tv.Index] {
				hasClamped = true
			}
		}
		if !fits {
			continue
		}
		if !hasClamped {
			out = append(out, tab)
			continue
		}
		out = append(out, projectClamped(tab, clamped, x0))
	}
	return out
}

// ProblemValue combines the per-root scalar values with the input tables
// that depend only on clamped variables, evaluated at x0. This finalises
// the numerical result after the upward pass.
func (t *Task[Y]) ProblemValue(rootValues []Y, x0 []int, clampedVars []int) Y {
	clamped := make(map[int]bool, len(clampedVars))
	for _, v := range clampedVars {
		clamped[v] = true
	}

	value := t.ops.CombineIdentity()
	for _, rv := range rootValues {
		value = t.ops.Combine(value, rv)
	}
	for _, tab := range t.tables {
		inClamped := true
		for _, tv := range tab.Vars() {
			if !clamped[tv.Index] {
				inClamped = false
				break
			}
		}
		if inClamped {
			value = t.ops.Combine(value, tab.At(tab.IndexOf(x0)))
		}
	}
	return value
}

// projectClamped returns a copy of tab with the clamped scope variables
// fixed to their x0 values.
func projectClamped[Y any](tab *table.Table[Y], clamped map[int]bool, x0 []int) *table.Table[Y] {
	var keptScope, keptDoms []int
	offset := 0
	var kept []table.Var
	for _, tv := range tab.Vars() {
		if clamped[tv.Index] {
			offset += x0[tv.Index] * tv.Stride
			continue
		}
		keptScope = append(keptScope, tv.Index)
		keptDoms = append(keptDoms, tv.DomSize)
		kept = append(kept, tv)
	}

	out, err := table.New[Y](keptScope, keptDoms)
	if err != nil {
		// The projected table is strictly smaller than tab, which exists.
		panic(err)
	}
	counters := make([]int, len(kept))
	src := offset
	for i := 0; i < out.Size(); i++ {
		out.Set(i, tab.At(src))
		for d := 0; d < len(kept); d++ {
			counters[d]++
			src += kept[d].Stride
			if counters[d] < kept[d].DomSize {
				break
			}
			counters[d] = 0
			src -= kept[d].DomSize * kept[d].Stride
		}
	}
	return out
}

// sortedUnion merges ascending variable lists into one ascending list
// without duplicates.
func sortedUnion(lists ...[]int) []int {
	var out []int
	for _, l := range lists {
		out = append(out, l...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
