package table

import (
	"math"
	"testing"

	"github.com/matzehuels/factortree/pkg/errors"
)

func TestNew(t *testing.T) {
	scope := []int{0, 3, 7, 10, 11}
	domSizes := []int{2, 3, 2, 2, 2}
	wantStrides := []int{1, 2, 6, 12, 24}

	tab, err := New[int](scope, domSizes)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tab.Size() != 48 {
		t.Errorf("Size() = %d, want 48", tab.Size())
	}
	for i, v := range tab.Vars() {
		if v.Index != scope[i] || v.DomSize != domSizes[i] || v.Stride != wantStrides[i] {
			t.Errorf("Vars()[%d] = %+v, want index %d domSize %d stride %d",
				i, v, scope[i], domSizes[i], wantStrides[i])
		}
	}

	vals := make([]int, 48)
	for i := range vals {
		vals[i] = i + 1
	}
	if err := tab.SetValues(vals); err != nil {
		t.Fatalf("SetValues: %v", err)
	}
	for i := 0; i < tab.Size(); i++ {
		if tab.At(i) != i+1 {
			t.Fatalf("At(%d) = %d, want %d", i, tab.At(i), i+1)
		}
	}
}

func TestScalar(t *testing.T) {
	tab := Scalar(42)
	if len(tab.Vars()) != 0 {
		t.Errorf("scalar table has scope %v", tab.Scope())
	}
	if tab.Size() != 1 || tab.At(0) != 42 {
		t.Errorf("scalar table = size %d value %d", tab.Size(), tab.At(0))
	}
}

func TestNewErrors(t *testing.T) {
	goodScope := []int{0, 3, 7, 10, 11}
	goodDoms := []int{2, 3, 2, 2, 2}
	huge := math.MaxUint16 - 1

	tests := []struct {
		name     string
		scope    []int
		domSizes []int
		wantCode errors.Code
	}{
		{"ShortDomSizes", goodScope, []int{2, 4}, errors.ErrCodeInvalidArg},
		{"RepeatedVars", []int{1, 1, 4, 5, 6}, goodDoms, errors.ErrCodeInvalidArg},
		{"UnsortedVars", []int{1, 6, 2, 3, 4}, goodDoms, errors.ErrCodeInvalidArg},
		{"ZeroDomSize", goodScope, []int{2, 0, 2, 2, 2}, errors.ErrCodeInvalidArg},
		{"NegativeVar", []int{-1, 2}, []int{2, 2}, errors.ErrCodeInvalidArg},
		{
			"HugeDomSizes",
			[]int{0, 1, 2, 3, 4, 5, 6, 7},
			[]int{huge, huge, huge, huge, huge, huge, huge, huge},
			errors.ErrCodeLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[int](tt.scope, tt.domSizes)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error code = %v, want %v (%v)", errors.GetCode(err), tt.wantCode, err)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	tab, err := New[float64]([]int{1, 4, 5}, []int{2, 3, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// x1=1, x4=2, x5=1 -> 1 + 2*2 + 1*6 = 11
	x := []int{0, 1, 0, 0, 2, 1}
	if got := tab.IndexOf(x); got != 11 {
		t.Errorf("IndexOf = %d, want 11", got)
	}
}

func TestVarPos(t *testing.T) {
	tab, err := New[int]([]int{2, 5, 9}, []int{2, 2, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for v, want := range map[int]int{2: 0, 5: 1, 9: 2, 0: -1, 4: -1, 10: -1} {
		if got := tab.VarPos(v); got != want {
			t.Errorf("VarPos(%d) = %d, want %d", v, got, want)
		}
	}
}
