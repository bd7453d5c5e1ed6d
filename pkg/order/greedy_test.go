package order

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/graph"
)

// fakeProblem implements Problem for a bare graph with given domains.
type fakeProblem struct {
	g        *graph.Graph
	domSizes []int
}

func (p *fakeProblem) NumVars() int      { return p.g.NumVertices() }
func (p *fakeProblem) DomSize(v int) int { return p.domSizes[v] }
func (p *fakeProblem) Graph() *graph.Graph {
	return p.g
}

func uniformProblem(edges []graph.Edge, minVars, dom int) *fakeProblem {
	g := graph.New(edges, minVars)
	doms := make([]int, g.NumVertices())
	for i := range doms {
		doms[i] = dom
	}
	return &fakeProblem{g: g, domSizes: doms}
}

// pairGraph is a 32-variable pairwise structure with mixed domain sizes,
// adapted from a hardware-like interaction graph.
func pairGraph() *fakeProblem {
	pairs := [][2]int{
		{0, 9}, {0, 18}, {0, 28}, {1, 12}, {1, 17}, {1, 20}, {1, 21}, {1, 23},
		{2, 15}, {2, 17}, {2, 24}, {2, 28}, {3, 23}, {3, 28}, {4, 10}, {4, 13},
		{4, 26}, {5, 15}, {5, 24}, {5, 26}, {5, 30}, {6, 12}, {6, 14}, {6, 18},
		{6, 19}, {6, 26}, {7, 11}, {7, 16}, {7, 21}, {8, 16}, {8, 26}, {9, 12},
		{9, 16}, {9, 17}, {10, 14}, {10, 16}, {10, 20}, {10, 24}, {10, 31},
		{11, 15}, {11, 19}, {11, 27}, {12, 13}, {12, 14}, {12, 15}, {12, 16},
		{13, 17}, {13, 19}, {13, 23}, {13, 26}, {14, 30}, {15, 18}, {16, 23},
		{16, 24}, {16, 26}, {16, 27}, {17, 20}, {17, 24}, {19, 21}, {19, 24},
		{20, 29}, {21, 22}, {22, 27}, {23, 31}, {25, 26}, {26, 29}, {27, 31},
	}
	doms := []int{
		2, 2, 2, 2, 2, 3, 2, 2, 2, 3, 2, 3, 3, 3, 2, 2,
		2, 2, 2, 2, 2, 1, 2, 2, 2, 3, 2, 3, 3, 1, 1, 2,
	}
	edges := make([]graph.Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = graph.Edge{U: p[0], V: p[1]}
	}
	return &fakeProblem{g: graph.New(edges, len(doms)), domSizes: doms}
}

func heuristics() []Heuristic {
	return []Heuristic{MinDegree, WeightedMinDegree, MinFill, WeightedMinFill}
}

func TestGreedyRespectsComplexityBound(t *testing.T) {
	p := pairGraph()
	for _, h := range heuristics() {
		for _, maxCplx := range []float64{3, 5, 8, 12} {
			rng := rand.New(rand.NewSource(7)).Float64
			order, err := Greedy(p, Options{
				MaxComplexity:  maxCplx,
				Heuristic:      h,
				Rng:            rng,
				SelectionScale: 1,
			})
			if err != nil {
				t.Fatalf("%v/%v: %v", h, maxCplx, err)
			}
			d, err := decomp.New(p.Graph(), order, p.domSizes)
			if err != nil {
				t.Fatalf("%v/%v decomp: %v", h, maxCplx, err)
			}
			if d.Complexity() > maxCplx {
				t.Errorf("%v/%v: complexity %v exceeds bound", h, maxCplx, d.Complexity())
			}
		}
	}
}

func TestGreedyCompleteOrderWhenBudgetAllows(t *testing.T) {
	p := pairGraph()
	rng := rand.New(rand.NewSource(1)).Float64
	order, err := Greedy(p, Options{
		MaxComplexity:  64,
		Heuristic:      MinFill,
		Rng:            rng,
		SelectionScale: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != p.NumVars() {
		t.Errorf("order covers %d of %d variables", len(order), p.NumVars())
	}
	seen := make(map[int]bool)
	for _, v := range order {
		if seen[v] {
			t.Errorf("variable %d repeated", v)
		}
		seen[v] = true
	}
}

func TestGreedyClampsOnCompleteGraph(t *testing.T) {
	// K10 over binary variables needs complexity 10; with a budget of 5
	// some variables must be clamped, and the bound must still hold.
	var edges []graph.Edge
	for u := 0; u < 10; u++ {
		for v := u + 1; v < 10; v++ {
			edges = append(edges, graph.Edge{U: u, V: v})
		}
	}
	p := uniformProblem(edges, 10, 2)

	for _, h := range heuristics() {
		rng := rand.New(rand.NewSource(3)).Float64
		order, err := Greedy(p, Options{
			MaxComplexity:  5,
			Heuristic:      h,
			Rng:            rng,
			SelectionScale: 1,
		})
		if err != nil {
			t.Fatalf("%v: %v", h, err)
		}
		if len(order) >= 10 {
			t.Errorf("%v: expected clamped variables, order %v", h, order)
		}
		d, err := decomp.New(p.Graph(), order, p.domSizes)
		if err != nil {
			t.Fatalf("%v decomp: %v", h, err)
		}
		if d.Complexity() > 5 {
			t.Errorf("%v: complexity %v exceeds 5", h, d.Complexity())
		}
	}
}

func TestGreedyPreClamped(t *testing.T) {
	p := uniformProblem([]graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}}, 4, 2)
	ranks := []int{0, -1, 0, 0}
	order, err := Greedy(p, Options{
		MaxComplexity: 10,
		ClampRanks:    ranks,
		Heuristic:     MinDegree,
		Rng:           func() float64 { return 0 },
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range order {
		if v == 1 {
			t.Errorf("pre-clamped variable 1 appears in order %v", order)
		}
	}
	if len(order) != 3 {
		t.Errorf("order = %v, want the three unclamped variables", order)
	}
}

func TestGreedyClampRankLengthMismatch(t *testing.T) {
	p := uniformProblem([]graph.Edge{{U: 0, V: 1}}, 2, 2)
	_, err := Greedy(p, Options{
		MaxComplexity: 10,
		ClampRanks:    []int{0},
		Heuristic:     MinDegree,
		Rng:           func() float64 { return 0 },
	})
	if !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("error = %v, want INVALID_ARG", err)
	}
}

func TestGreedyUnknownHeuristic(t *testing.T) {
	p := uniformProblem([]graph.Edge{{U: 0, V: 1}}, 2, 2)
	_, err := Greedy(p, Options{
		MaxComplexity: 10,
		Heuristic:     Heuristic(99),
		Rng:           func() float64 { return 0 },
	})
	if !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("error = %v, want INVALID_ARG", err)
	}
}

func TestGreedyEmptyProblem(t *testing.T) {
	p := uniformProblem(nil, 0, 2)
	order, err := Greedy(p, Options{
		MaxComplexity: 10,
		Heuristic:     MinFill,
		Rng:           func() float64 { return 0 },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 0 {
		t.Errorf("order = %v, want empty", order)
	}
}

func TestGreedyZeroSelectionScaleDeterministic(t *testing.T) {
	p := pairGraph()
	var first []int
	for i := 0; i < 3; i++ {
		rng := rand.New(rand.NewSource(int64(i * 100))).Float64
		order, err := Greedy(p, Options{
			MaxComplexity:  12,
			Heuristic:      WeightedMinFill,
			Rng:            rng,
			SelectionScale: 0,
		})
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = order
			continue
		}
		if len(order) != len(first) {
			t.Fatalf("length changed across runs")
		}
		for j := range order {
			if order[j] != first[j] {
				t.Fatalf("run differs at %d despite zero selection scale", j)
			}
		}
	}
}

func TestParseHeuristic(t *testing.T) {
	for _, h := range heuristics() {
		parsed, err := ParseHeuristic(h.String())
		if err != nil || parsed != h {
			t.Errorf("round trip of %v failed: %v %v", h, parsed, err)
		}
	}
	if _, err := ParseHeuristic("nope"); !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("ParseHeuristic(nope) = %v, want INVALID_ARG", err)
	}
}
