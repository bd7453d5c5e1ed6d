// Package decomp builds tree decompositions from elimination orders.
//
// Processing an elimination order over the primal graph yields one bucket
// node per eliminated variable. A node records the variable it eliminates,
// the separator variables shared with its parent, and the clamped variables
// present in its bucket. Variables absent from the order are clamped: they
// are never eliminated and contribute to every bucket they are adjacent to.
//
// Nodes live in a single arena owned by the TreeDecomp; parent and children
// links are arena indices, not pointers.
package decomp

import (
	"math"
	"slices"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/graph"
)

// Node is one bucket of a tree decomposition. It eliminates Var; SepVars is
// the residual scope shared with the parent (ascending, never contains Var);
// ClampedVars lists the clamped variables adjacent to this bucket
// (ascending). Children and Parent are arena indices; Parent is -1 for
// roots. Children are ordered with the later-eliminated child first.
type Node struct {
	Var         int
	SepVars     []int
	ClampedVars []int
	Children    []int
	Parent      int
}

// TreeDecomp is a rooted forest of bucket nodes derived from an elimination
// order. More than one root arises when the primal graph is disconnected or
// when clamping severs it.
type TreeDecomp struct {
	nodes      []Node
	roots      []int
	clamped    []int
	numVars    int
	complexity float64
}

// New builds a tree decomposition from a graph, an elimination order (a
// duplicate-free subset of the vertices), and per-variable domain sizes.
//
// Returns an INVALID_ARG error when the order repeats or exceeds the vertex
// range, when domSizes is shorter than the vertex count, or when a domain
// size is zero.
func New(g *graph.Graph, order []int, domSizes []int) (*TreeDecomp, error) {
	numVars := g.NumVertices()
	if len(domSizes) < numVars {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"domain sizes cover %d of %d variables", len(domSizes), numVars)
	}
	for v := 0; v < numVars; v++ {
		if domSizes[v] < 1 {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"variable %d has domain size %d", v, domSizes[v])
		}
	}

	pos := make([]int, numVars) // position in order, -1 when clamped
	for i := range pos {
		pos[i] = -1
	}
	for i, v := range order {
		if v < 0 || v >= numVars {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"elimination order contains %d but there are only %d variables", v, numVars)
		}
		if pos[v] >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"variable %d appears more than once in the elimination order", v)
		}
		pos[v] = i
	}

	// Working adjacency, including clamped variables. Fill-in cliques are
	// inserted among separator variables only, so a clamped variable keeps
	// exactly its original (surviving) neighbours.
	adj := make([]map[int]struct{}, numVars)
	for v := 0; v < numVars; v++ {
		adj[v] = make(map[int]struct{}, g.Degree(v))
		for _, w := range g.Neighbors(v) {
			adj[v][w] = struct{}{}
		}
	}

	d := &TreeDecomp{
		nodes:   make([]Node, len(order)),
		numVars: numVars,
	}

	for i, v := range order {
		var sep, clamped []int
		for w := range adj[v] {
			if pos[w] >= 0 {
				sep = append(sep, w)
			} else {
				clamped = append(clamped, w)
			}
		}
		slices.Sort(sep)
		slices.Sort(clamped)

		parent := -1
		parentPos := math.MaxInt
		for _, w := range sep {
			if pos[w] < parentPos {
				parentPos = pos[w]
				parent = pos[w]
			}
		}

		for ai := 0; ai < len(sep); ai++ {
			for bi := ai + 1; bi < len(sep); bi++ {
				adj[sep[ai]][sep[bi]] = struct{}{}
				adj[sep[bi]][sep[ai]] = struct{}{}
			}
		}
		for w := range adj[v] {
			delete(adj[w], v)
		}
		adj[v] = nil

		d.nodes[i] = Node{Var: v, SepVars: sep, ClampedVars: clamped, Parent: parent}

		cplx := math.Log2(float64(domSizes[v]))
		for _, w := range sep {
			cplx += math.Log2(float64(domSizes[w]))
		}
		if cplx > d.complexity {
			d.complexity = cplx
		}
	}

	// Roots and children are both listed with the later-eliminated node
	// first, so downward traversals mirror the reverse elimination order.
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if p := d.nodes[i].Parent; p >= 0 {
			d.nodes[p].Children = append(d.nodes[p].Children, i)
		} else {
			d.roots = append(d.roots, i)
		}
	}

	for v := 0; v < numVars; v++ {
		if pos[v] < 0 {
			d.clamped = append(d.clamped, v)
		}
	}

	return d, nil
}

// Node returns the arena node with the given index.
func (d *TreeDecomp) Node(i int) *Node { return &d.nodes[i] }

// Roots returns the arena indices of the root nodes, last-eliminated first.
func (d *TreeDecomp) Roots() []int { return d.roots }

// Size returns the number of bucket nodes (the elimination order length).
func (d *TreeDecomp) Size() int { return len(d.nodes) }

// NumVars returns the number of variables of the underlying graph.
func (d *TreeDecomp) NumVars() int { return d.numVars }

// ClampedVars returns the ascending list of variables absent from the
// elimination order.
func (d *TreeDecomp) ClampedVars() []int { return d.clamped }

// Complexity returns log2 of the largest bucket's domain-size product over
// {Var} union SepVars. For binary variables this is the treewidth plus one.
func (d *TreeDecomp) Complexity() float64 { return d.complexity }
