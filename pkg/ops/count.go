package ops

import (
	"math"

	"github.com/matzehuels/factortree/pkg/table"
)

// ValueCount pairs an objective value with the number of assignments
// achieving it. Counts are floating point so that very large tie counts
// degrade gracefully instead of overflowing.
type ValueCount struct {
	Value float64
	Count float64
}

// CountOps lifts the min-plus algebra to (value, count) pairs: combine
// adds values and multiplies counts, and the marginalizer returns the
// minimum value together with the summed counts of all entries whose value
// lies within the relative tolerance Eps of it.
//
// CountOps supports no downward pass; the count of tied optima is read off
// the problem value directly.
type CountOps struct {
	Eps float64
}

// NewCountOps returns a counting algebra with relative tolerance eps.
func NewCountOps(eps float64) *CountOps {
	return &CountOps{Eps: eps}
}

// Combine adds values and multiplies counts.
func (o *CountOps) Combine(a, b ValueCount) ValueCount {
	return ValueCount{Value: a.Value + b.Value, Count: a.Count * b.Count}
}

// CombineIdentity returns the pair (0, 1).
func (o *CountOps) CombineIdentity() ValueCount {
	return ValueCount{Value: 0, Count: 1}
}

// Marginalizer returns a counting minimum marginalizer.
func (o *CountOps) Marginalizer() Marginalizer[ValueCount] {
	return countMarginalizer{eps: o.Eps}
}

// closeEnough reports whether a and b agree within relative tolerance eps.
func closeEnough(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps*math.Max(math.Abs(a), math.Abs(b))
}

type countMarginalizer struct {
	eps float64
}

func (m countMarginalizer) Marginalize(_ int, slice *table.Table[ValueCount]) ValueCount {
	vals := slice.Values()
	best := vals[0].Value
	for _, v := range vals[1:] {
		if v.Value < best {
			best = v.Value
		}
	}
	count := 0.0
	for _, v := range vals {
		if closeEnough(v.Value, best, m.eps) {
			count += v.Count
		}
	}
	return ValueCount{Value: best, Count: count}
}
