package infer

import (
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/table"
)

// bucketFixture is a 13-variable, 15-table problem with a mix of unary,
// pairwise and ternary factors.
func bucketFixture(t *testing.T) []*table.Table[int] {
	t.Helper()
	return []*table.Table[int]{
		mkTable(t, []int{0, 1, 2}, []int{2, 2, 2}, []int{6, 8, -7, 8, 3, -8, -4, 1}),
		mkTable(t, []int{0, 1, 3}, []int{2, 2, 2}, []int{9, 9, -7, 9, 9, 0, 6, -7}),
		mkTable(t, []int{1, 2, 4}, []int{2, 2, 2}, []int{-1, 8, 6, 9, 3, -9, 7, 8}),
		mkTable(t, []int{3, 4}, []int{2, 2}, []int{3, 5, 5, -2}),
		mkTable(t, []int{3, 5}, []int{2, 3}, []int{3, -6, 4, -9, -4, -9}),
		mkTable(t, []int{4, 6}, []int{2, 3}, []int{-8, 6, 4, -3, 9, -9}),
		mkTable(t, []int{4, 7}, []int{2, 3}, []int{-1, -2, 5, 6, -6, 0}),
		mkTable(t, []int{5, 8}, []int{3, 2}, []int{-1, 3, 4, 5, -4, 3}),
		mkTable(t, []int{6}, []int{3}, []int{3, -6, -7}),
		mkTable(t, []int{6, 8}, []int{3, 2}, []int{0, 9, -3, 2, -5, 5}),
		mkTable(t, []int{7, 9}, []int{3, 2}, []int{-5, 0, 4, 7, 9, 1}),
		mkTable(t, []int{8, 9}, []int{2, 2}, []int{-7, -7, -5, 6}),
		mkTable(t, []int{8, 10, 11}, []int{2, 2, 2}, []int{-5, 6, -5, 8, -3, -6, -5, 2}),
		mkTable(t, []int{9, 11, 12}, []int{2, 2, 2}, []int{-1, -3, 6, 2, 1, 8, -4, 5}),
		mkTable(t, []int{10, 11, 12}, []int{2, 2, 2}, []int{5, -2, 1, -8, -8, 1, 5, 8}),
	}
}

// expectTab is a table expectation independent of ownership.
type expectTab struct {
	scope  []int
	values []int
}

// tabKey canonicalises a table for multiset comparison.
func tabKey(scope, values []int) string {
	return fmt.Sprintf("%v=%v", scope, values)
}

// bucketScenario bundles one elimination order with its expected results.
type bucketScenario struct {
	name         string
	order        []int
	x0           []int
	problemValue int
	solution     []int
	nodeTables   map[int][]expectTab // keyed by node variable; nil means "skip check"
}

func bucketScenarios(t *testing.T) []bucketScenario {
	tabs := bucketFixture(t)
	vals := func(i int) []int { return tabs[i].Values() }
	scope := func(i int) []int { return tabs[i].Scope() }
	input := func(i int) expectTab { return expectTab{scope: scope(i), values: vals(i)} }

	return []bucketScenario{
		{
			name:         "AllClamped",
			order:        nil,
			x0:           []int{0, 1, 0, 1, 0, 2, 1, 2, 0, 1, 0, 1, 0},
			problemValue: 4,
			solution:     []int{0, 1, 0, 1, 0, 2, 1, 2, 0, 1, 0, 1, 0},
			nodeTables:   map[int][]expectTab{},
		},
		{
			name:         "NoClamped",
			order:        []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			x0:           make([]int, 13),
			problemValue: -64,
			solution:     []int{0, 1, 0, 1, 1, 0, 2, 0, 0, 0, 0, 0, 1},
			nodeTables: map[int][]expectTab{
				0: {
					input(0), input(1),
					{[]int{1, 2, 3}, []int{-37, -49, -33, -32, -51, -63, -47, -46}},
				},
				1: {
					input(2),
					{[]int{1, 2, 3}, []int{15, -14, 1, -11, 8, -1, -8, -6}},
					{[]int{2, 3, 4}, []int{-27, -27, -33, -33, -40, -40, -54, -54}},
				},
				2: {
					{[]int{2, 3, 4}, []int{-6, -2, 7, -2, -23, -3, -10, -1}},
					{[]int{3, 4}, []int{-27, -33, -40, -54}},
				},
				3: {
					input(3), input(4),
					{[]int{3, 4}, []int{-6, -2, -23, -10}},
					{[]int{4, 5}, []int{-31, -46, -29, -42, -26, -41}},
				},
				4: {
					input(5), input(6),
					{[]int{4, 5}, []int{-3, -18, -6, -21, -7, -22}},
					{[]int{5, 6, 7}, []int{-22, -18, -17, -23, -32, -25, -35, -31, -30,
						-17, -13, -12, -18, -27, -20, -30, -26, -25,
						-13, -9, -8, -14, -23, -16, -26, -22, -21}},
				},
				5: {
					input(7),
					{[]int{5, 6, 7}, []int{-14, -17, -18, -23, -26, -27, -29, -32, -33,
						-6, -9, -10, -15, -18, -19, -21, -24, -25,
						-17, -20, -21, -21, -24, -25, -27, -30, -31}},
					{[]int{6, 7, 8}, []int{-21, -21, -34, -16, -16, -29, -12, -12, -25,
						-12, -28, -19, -7, -23, -14, -3, -19, -10}},
				},
				6: {
					input(8), input(9),
					{[]int{6, 7, 8}, []int{-15, -24, -30, -7, -16, -22, -18, -22, -28,
						-21, -30, -36, -13, -22, -28, -24, -28, -34}},
					{[]int{7, 8}, []int{-24, -19, -15, -17, -12, -8}},
				},
				7: {
					input(10),
					{[]int{7, 8}, []int{-40, -32, -38, -41, -33, -39}},
					{[]int{8, 9}, []int{-19, -12, -16, 2}},
				},
				8: {
					input(11), input(12),
					{[]int{8, 9}, []int{-45, -46, -37, -38}},
					{[]int{9, 10, 11}, []int{-7, 0, -3, -5, 1, 3, -2, -6}},
				},
				9: {
					input(13),
					{[]int{9, 10, 11}, []int{-57, -47, -57, -47, -59, -45, -57, -47}},
					{[]int{10, 11, 12}, []int{5, -2, 1, -8, -8, 1, 5, 8}},
				},
				10: {
					input(14),
					{[]int{10, 11, 12}, []int{-58, -58, -53, -51, -56, -56, -63, -61}},
				},
				11: {
					{[]int{11, 12}, []int{-60, -59, -64, -58}},
				},
				12: {
					{[]int{12}, []int{-60, -64}},
				},
			},
		},
		{
			name:         "TwoRoots",
			order:        []int{2, 1, 0, 5, 3, 10, 11, 12, 9, 7},
			x0:           []int{0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 0, 0, 0},
			problemValue: -21,
			solution:     []int{1, 0, 1, 1, 0, 1, 2, 0, 1, 0, 0, 1, 1},
			nodeTables: map[int][]expectTab{
				0: {
					{[]int{0, 3}, []int{-6, 7, 7, -2}},
					{[]int{3}, []int{2, -8}},
				},
				1: {
					input(1),
					{[]int{0, 1}, []int{5, -2, 1, 10}},
					{[]int{0, 3}, []int{2, 2, -8, -8}},
				},
				2: {
					input(0),
					{[]int{1, 2}, []int{-1, 8, 6, 9}},
					{[]int{0, 1}, []int{1, -8, -5, -15}},
				},
				3: {
					{[]int{3}, []int{3, 5}},
					{[]int{3}, []int{-6, -2}},
					{[]int{3}, []int{-1, -13}},
				},
				5: {
					input(4),
					{[]int{5}, []int{5, -4, 3}},
					{[]int{3}, []int{-3, 3}},
				},
				7: {
					{[]int{7}, []int{-1, 5, -6}},
					{[]int{7}, []int{-17, -12, -8}},
				},
				9: {
					input(10),
					{[]int{9}, []int{-7, 6}},
					{[]int{9}, []int{-5, -4}},
					{[]int{7}, []int{-1, 5, -6}},
				},
				10: {
					input(14),
					{[]int{10, 11}, []int{6, 8, -6, 2}},
					{[]int{11, 12}, []int{-14, -7, -12, -17}},
				},
				11: {
					input(13),
					{[]int{11, 12}, []int{6, -6, -2, -1}},
					{[]int{9, 12}, []int{-13, 1, -13, 1}},
				},
				12: {
					{[]int{9, 12}, []int{0, -4, -5, 4}},
					{[]int{9}, []int{-13, 1}},
				},
			},
		},
	}
}

func buildBucketTree(t *testing.T, sc bucketScenario, solvable, keep bool) (*BucketTree[int, *ops.MinSolutionSet[int]], *ops.MinOps[int]) {
	t.Helper()
	o := ops.NewMinOps[int]()
	task, err := NewTask(bucketFixture(t), o, 1)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	dec, err := decomp.New(task.Graph(), sc.order, task.DomSizes())
	if err != nil {
		t.Fatalf("decomp.New: %v", err)
	}
	bt, err := NewBucketTree[int, *ops.MinSolutionSet[int]](task, dec, sc.x0, solvable, keep)
	if err != nil {
		t.Fatalf("NewBucketTree: %v", err)
	}
	return bt, o
}

func TestBucketTreeProblemValue(t *testing.T) {
	for _, sc := range bucketScenarios(t) {
		t.Run(sc.name, func(t *testing.T) {
			bt, _ := buildBucketTree(t, sc, false, false)
			if got := bt.ProblemValue(); got != sc.problemValue {
				t.Errorf("ProblemValue = %d, want %d", got, sc.problemValue)
			}
			if _, err := bt.Solve(); !errors.Is(err, errors.ErrCodeOperationUnavailable) {
				t.Errorf("Solve error = %v, want OPERATION_UNAVAILABLE", err)
			}
			if _, err := bt.NodeTables(); !errors.Is(err, errors.ErrCodeOperationUnavailable) {
				t.Errorf("NodeTables error = %v, want OPERATION_UNAVAILABLE", err)
			}
		})
	}
}

func TestBucketTreeSolve(t *testing.T) {
	for _, sc := range bucketScenarios(t) {
		t.Run(sc.name, func(t *testing.T) {
			bt, o := buildBucketTree(t, sc, true, false)
			o.MaxSolutions = 1

			if got := bt.ProblemValue(); got != sc.problemValue {
				t.Errorf("ProblemValue = %d, want %d", got, sc.problemValue)
			}
			set, err := bt.Solve()
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if set.Len() != 1 {
				t.Fatalf("Solve returned %d solutions, want 1", set.Len())
			}
			sol := set.Solutions()[0]
			if sol.Value != 0 {
				t.Errorf("relative solution value = %d, want 0", sol.Value)
			}
			if !slices.Equal(sol.Solution, sc.solution) {
				t.Errorf("solution = %v, want %v", sol.Solution, sc.solution)
			}

			// Solving twice is deterministic for min-plus.
			again, err := bt.Solve()
			if err != nil {
				t.Fatalf("second Solve: %v", err)
			}
			if !slices.Equal(again.Solutions()[0].Solution, sol.Solution) {
				t.Error("repeated Solve differs")
			}
		})
	}
}

func TestBucketTreeNodeTables(t *testing.T) {
	for _, sc := range bucketScenarios(t) {
		t.Run(sc.name, func(t *testing.T) {
			bt, _ := buildBucketTree(t, sc, false, true)
			if got := bt.ProblemValue(); got != sc.problemValue {
				t.Errorf("ProblemValue = %d, want %d", got, sc.problemValue)
			}

			nts, err := bt.NodeTables()
			if err != nil {
				t.Fatalf("NodeTables: %v", err)
			}
			if len(nts) != len(sc.nodeTables) {
				t.Fatalf("NodeTables has %d entries, want %d", len(nts), len(sc.nodeTables))
			}
			for _, nt := range nts {
				want, ok := sc.nodeTables[nt.NodeVar]
				if !ok {
					t.Errorf("unexpected node variable %d", nt.NodeVar)
					continue
				}
				var got, expect []string
				for _, tab := range nt.Tables {
					got = append(got, tabKey(tab.Scope(), tab.Values()))
				}
				for _, e := range want {
					expect = append(expect, tabKey(e.scope, e.values))
				}
				sort.Strings(got)
				sort.Strings(expect)
				if !slices.Equal(got, expect) {
					t.Errorf("node %d tables:\n got  %v\n want %v", nt.NodeVar, got, expect)
				}
			}
		})
	}
}

func TestBucketTreeSolveWithTables(t *testing.T) {
	for _, sc := range bucketScenarios(t) {
		t.Run(sc.name, func(t *testing.T) {
			bt, o := buildBucketTree(t, sc, true, true)
			o.MaxSolutions = 1
			set, err := bt.Solve()
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if !slices.Equal(set.Solutions()[0].Solution, sc.solution) {
				t.Errorf("solution = %v, want %v", set.Solutions()[0].Solution, sc.solution)
			}
			if _, err := bt.NodeTables(); err != nil {
				t.Errorf("NodeTables: %v", err)
			}
		})
	}
}

func TestBucketTreeBadInitState(t *testing.T) {
	o := ops.NewMinOps[int]()
	task, err := NewTask(bucketFixture(t), o, 1)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	dec, err := decomp.New(task.Graph(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, task.DomSizes())
	if err != nil {
		t.Fatalf("decomp.New: %v", err)
	}

	short := make([]int, 5)
	if _, err := NewBucketTree[int, *ops.MinSolutionSet[int]](task, dec, short, false, false); !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("short x0 error = %v, want INVALID_ARG", err)
	}
	bad := make([]int, 13)
	bad[6] = 3 // domain size of variable 6 is 3
	if _, err := NewBucketTree[int, *ops.MinSolutionSet[int]](task, dec, bad, false, false); !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("out-of-range x0 error = %v, want INVALID_ARG", err)
	}
}
