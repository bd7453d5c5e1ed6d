package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/graph"
	"github.com/matzehuels/factortree/pkg/model"
)

func chainDecomp(t *testing.T) *decomp.TreeDecomp {
	t.Helper()
	g := graph.New([]graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}}, 4)
	d, err := decomp.New(g, []int{0, 1, 2, 3}, []int{2, 2, 2, 2})
	if err != nil {
		t.Fatalf("decomp.New: %v", err)
	}
	return d
}

func TestDecompToDOT(t *testing.T) {
	dot := DecompToDOT(chainDecomp(t))
	if !strings.HasPrefix(dot, "digraph decomp {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	for _, want := range []string{"x0", "x1", "x2", "x3", "n0 -> n1;", "n1 -> n2;", "n2 -> n3;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if !strings.Contains(dot, "sep {x1}") {
		t.Errorf("DOT missing separator label:\n%s", dot)
	}
}

func TestDecompToDOTClamped(t *testing.T) {
	g := graph.New([]graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}}, 3)
	d, err := decomp.New(g, []int{0, 2}, []int{2, 2, 2})
	if err != nil {
		t.Fatalf("decomp.New: %v", err)
	}
	dot := DecompToDOT(d)
	if !strings.Contains(dot, "clamp {x1}") {
		t.Errorf("DOT missing clamp label:\n%s", dot)
	}
}

func TestFactorGraphToDOT(t *testing.T) {
	specs := []model.TableSpec{
		{Scope: []int{0, 1}, DomSizes: []int{2, 2}, Values: make([]float64, 4)},
		{Scope: []int{1}, DomSizes: []int{2}, Values: make([]float64, 2)},
	}
	dot := FactorGraphToDOT(specs)
	for _, want := range []string{"graph factors {", "v0", "v1", "f0", "f1", "f0 -- v0;", "f0 -- v1;", "f1 -- v1;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestDecompStats(t *testing.T) {
	stats := DecompStats(chainDecomp(t))
	if stats.Nodes != 4 || stats.Roots != 1 || len(stats.Clamped) != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Complexity != 2 {
		t.Errorf("complexity = %v, want 2", stats.Complexity)
	}
}
