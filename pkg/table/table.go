// Package table provides the dense factor table underlying all inference.
//
// A Table holds one value per assignment of its scope, a strictly ascending
// list of variable indices. Values are packed so that the first scope
// variable varies fastest: the linear index of assignment (a1, ..., ak) is
// sum(ai * stride(i)) with stride(1) = 1 and stride(i+1) = stride(i)*dom(i).
//
// Tables are generic over their value type. Inference over energies uses
// Table[float64]; counting uses pair values; elimination ordering uses
// Table[Unit] which stores no values at all.
//
// The scope of a table is immutable after construction. Values may be
// written in place. Tables are shared read-only between a Task and the
// bucket trees built from it.
package table

import (
	"math"

	"github.com/matzehuels/factortree/pkg/errors"
)

// Var describes one variable of a table's scope: its index, domain size,
// and the stride of its axis in the packed value array.
type Var struct {
	Index   int
	DomSize int
	Stride  int
}

// Table is a dense multi-dimensional array indexed by a sorted scope.
// The zero value is not usable - use New.
type Table[Y any] struct {
	vars   []Var
	values []Y
}

// New creates a table over the given scope. The scope must be strictly
// ascending with non-negative indices, domSizes must match it in length,
// and every domain size must be at least 1. Values are zero-initialized.
//
// Returns an INVALID_ARG error for malformed scopes and a LENGTH error when
// the product of the domain sizes overflows the addressable range.
func New[Y any](scope []int, domSizes []int) (*Table[Y], error) {
	if len(scope) != len(domSizes) {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"scope has %d variables but %d domain sizes", len(scope), len(domSizes))
	}
	size := 1
	vars := make([]Var, len(scope))
	for i, v := range scope {
		if v < 0 {
			return nil, errors.New(errors.ErrCodeInvalidArg, "negative variable index %d", v)
		}
		if i > 0 && scope[i-1] >= v {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"scope not strictly ascending at position %d", i)
		}
		d := domSizes[i]
		if d < 1 {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"variable %d has domain size %d", v, d)
		}
		if size > math.MaxInt/d {
			return nil, errors.New(errors.ErrCodeLength,
				"table size exceeds addressable range")
		}
		vars[i] = Var{Index: v, DomSize: d, Stride: size}
		size *= d
	}
	return &Table[Y]{vars: vars, values: make([]Y, size)}, nil
}

// Scalar creates a zero-scope table holding a single value.
func Scalar[Y any](value Y) *Table[Y] {
	return &Table[Y]{values: []Y{value}}
}

// Vars returns the table's scope descriptors in ascending variable order.
// The returned slice must not be modified.
func (t *Table[Y]) Vars() []Var { return t.vars }

// Scope returns the variable indices of the table's scope, ascending.
func (t *Table[Y]) Scope() []int {
	scope := make([]int, len(t.vars))
	for i, v := range t.vars {
		scope[i] = v.Index
	}
	return scope
}

// Size returns the number of stored values (the product of domain sizes).
func (t *Table[Y]) Size() int { return len(t.values) }

// At returns the value at linear index i.
func (t *Table[Y]) At(i int) Y { return t.values[i] }

// Set writes the value at linear index i.
func (t *Table[Y]) Set(i int, value Y) { t.values[i] = value }

// Values returns the packed value slice. The caller may fill it in place;
// the scope itself stays immutable.
func (t *Table[Y]) Values() []Y { return t.values }

// SetValues copies vals into the table. Returns an INVALID_ARG error if the
// length does not match the table size.
func (t *Table[Y]) SetValues(vals []Y) error {
	if len(vals) != len(t.values) {
		return errors.New(errors.ErrCodeInvalidArg,
			"got %d values for a table of size %d", len(vals), len(t.values))
	}
	copy(t.values, vals)
	return nil
}

// VarPos returns the position of variable v within the scope, or -1.
func (t *Table[Y]) VarPos(v int) int {
	for i, tv := range t.vars {
		if tv.Index == v {
			return i
		}
		if tv.Index > v {
			break
		}
	}
	return -1
}

// HasVar reports whether v is part of the table's scope.
func (t *Table[Y]) HasVar(v int) bool { return t.VarPos(v) >= 0 }

// IndexOf returns the linear index of the assignment x, where x is indexed
// by variable (only the scope variables are read).
func (t *Table[Y]) IndexOf(x []int) int {
	idx := 0
	for _, tv := range t.vars {
		idx += x[tv.Index] * tv.Stride
	}
	return idx
}
