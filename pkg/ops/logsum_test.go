package ops

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/factortree/pkg/table"
)

// fixedSource returns queued numbers in order, for deterministic sampling
// tests.
func fixedSource(nums ...float64) Source {
	i := 0
	return func() float64 {
		n := nums[i%len(nums)]
		i++
		return n
	}
}

func logSumTestTable(t *testing.T) *table.Table[float64] {
	t.Helper()
	tab, err := table.New[float64]([]int{2}, []int{9})
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	if err := tab.SetValues([]float64{0, 1, -2, -1, 0, 0, 2, 1, 0}); err != nil {
		t.Fatalf("SetValues: %v", err)
	}
	return tab
}

func TestLogSumMarginalizer(t *testing.T) {
	o := NewLogSumOps(fixedSource(0.5))
	mrg := o.Marginalizer()
	got := mrg.Marginalize(2, logSumTestTable(t))
	if math.Abs(got-2.85237185) > 1e-7 {
		t.Errorf("Marginalize = %v, want 2.85237185", got)
	}
}

func TestSamplingMarginalizer(t *testing.T) {
	o := NewLogSumOps(fixedSource(0.22, 0.23, 0.359, 0.4))
	mrg := o.SolvableMarginalizer([]int{0, 6}, []int{4, 2}, 2, 9)

	got := mrg.Marginalize(2, logSumTestTable(t))
	if math.Abs(got-2.85237185) > 1e-7 {
		t.Fatalf("Marginalize = %v, want 2.85237185", got)
	}

	// Context of (x0=2, x6=0) is 2; successive draws walk the CDF.
	base := []int{2, 9, 9, 9, 9, 9, 0}
	wantPicks := []int{2, 3, 5, 6}
	for _, want := range wantPicks {
		sol := slices.Clone(base)
		mrg.Solve(sol)
		wantSol := slices.Clone(base)
		wantSol[2] = want
		if !slices.Equal(sol, wantSol) {
			t.Errorf("Solve -> %v, want %v", sol, wantSol)
		}
	}
}

func TestLogSumExp(t *testing.T) {
	vals := []float64{math.Log(1), math.Log(3)}
	if got, want := LogSumExp(vals), math.Log(4); math.Abs(got-want) > 1e-12 {
		t.Errorf("LogSumExp = %v, want %v", got, want)
	}
}

func TestLogSumOpsInitSolutionClones(t *testing.T) {
	o := NewLogSumOps(fixedSource(0.5))
	x0 := []int{1, 2, 3}
	s := o.InitSolution(x0)
	s[0] = 9
	if x0[0] != 1 {
		t.Error("InitSolution aliases x0")
	}
}
