// Package graph provides the primal graph of a factor-table problem.
//
// The graph is a symmetric adjacency over variable indices: an edge {u, v}
// exists iff some input table mentions both u and v. Storage is a flat
// CSR-style layout (offsets plus one neighbour slice), with each vertex's
// neighbours strictly ascending.
package graph

import (
	"slices"
)

// Edge is an undirected endpoint pair. Order of U and V is irrelevant;
// self-loops are dropped and duplicates coalesce during construction.
type Edge struct {
	U, V int
}

// Graph is an immutable symmetric adjacency structure.
// The zero value is an empty graph with no vertices.
type Graph struct {
	offsets []int
	adj     []int
}

// New builds a graph from a list of edges. The vertex count is the largest
// endpoint plus one, or minVertices if that is larger. Both directions of
// every edge are stored; neighbour lists are strictly ascending.
func New(edges []Edge, minVertices int) *Graph {
	numVertices := minVertices
	adjSets := make(map[int][]int)
	for _, e := range edges {
		if e.U == e.V {
			if e.U+1 > numVertices {
				numVertices = e.U + 1
			}
			continue
		}
		adjSets[e.U] = append(adjSets[e.U], e.V)
		adjSets[e.V] = append(adjSets[e.V], e.U)
		if m := max(e.U, e.V) + 1; m > numVertices {
			numVertices = m
		}
	}

	g := &Graph{offsets: make([]int, numVertices+1)}
	for v := 0; v < numVertices; v++ {
		ns := adjSets[v]
		slices.Sort(ns)
		ns = slices.Compact(ns)
		g.adj = append(g.adj, ns...)
		g.offsets[v+1] = len(g.adj)
	}
	return g
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int {
	if len(g.offsets) == 0 {
		return 0
	}
	return len(g.offsets) - 1
}

// Degree returns the number of neighbours of v.
func (g *Graph) Degree(v int) int {
	return g.offsets[v+1] - g.offsets[v]
}

// Neighbors returns the ascending neighbour list of v as a shared view.
// The returned slice must not be modified.
func (g *Graph) Neighbors(v int) []int {
	return g.adj[g.offsets[v]:g.offsets[v+1]]
}

// Equal reports whether two graphs have identical vertex sets and adjacency.
func (g *Graph) Equal(other *Graph) bool {
	return slices.Equal(g.offsets, other.offsets) && slices.Equal(g.adj, other.adj)
}
