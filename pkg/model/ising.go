package model

import (
	"github.com/matzehuels/factortree/pkg/errors"
)

// Vartype distinguishes the two binary variable conventions.
type Vartype int

const (
	// Spin maps domain index 0 to -1 and index 1 to +1.
	Spin Vartype = iota
	// Binary maps domain index 0 to 0 and index 1 to 1.
	Binary
)

// Coupler is one quadratic term of a sparse binary model.
type Coupler struct {
	U, V int
	Bias float64
}

// Ising builds tables for the Hamiltonian sum(h_i s_i) + sum(J_ij s_i s_j)
// over spins s in {-1, +1} at inverse temperature beta. Tables encode
// -beta times the energy of each configuration, with domain index 0
// standing for spin -1. Zero entries emit no table; a nonzero diagonal of
// J is INVALID_ARG.
func Ising(h []float64, j [][]float64, beta float64) ([]TableSpec, error) {
	var specs []TableSpec
	for i, hv := range h {
		if hv == 0 {
			continue
		}
		specs = append(specs, TableSpec{
			Scope:    []int{i},
			DomSizes: []int{2},
			Values:   []float64{beta * hv, -beta * hv},
		})
	}
	for r, row := range j {
		for c, jv := range row {
			if jv == 0 {
				continue
			}
			if r == c {
				return nil, errors.New(errors.ErrCodeInvalidArg,
					"nonzero diagonal J entry at %d", r)
			}
			specs = append(specs, pairSpec(r, c, jv, beta, Spin))
		}
	}
	return specs, nil
}

// QUBO builds tables for the objective sum(Q_ij x_i x_j) over binaries
// x in {0, 1} at inverse temperature beta. Diagonal entries yield unary
// tables, off-diagonal entries pairwise tables; tables encode -beta times
// the objective contribution.
func QUBO(q [][]float64, beta float64) []TableSpec {
	var specs []TableSpec
	for r, row := range q {
		for c, qv := range row {
			if qv == 0 {
				continue
			}
			if r == c {
				specs = append(specs, TableSpec{
					Scope:    []int{r},
					DomSizes: []int{2},
					Values:   []float64{0, -beta * qv},
				})
				continue
			}
			specs = append(specs, pairSpec(r, c, qv, beta, Binary))
		}
	}
	return specs
}

// COO builds tables from a sparse description: dense linear biases plus
// quadratic (u, v, bias) triples. Duplicate and transposed couplers are
// accumulated onto the ordered pair before any table is emitted. A
// self-coupler is INVALID_ARG.
//
// Unlike Ising and QUBO, a unary table is emitted for every linear entry,
// zeros included, so each of the model's variables carries a binary
// domain even when unbiased and unconnected.
func COO(linear []float64, quad []Coupler, vartype Vartype, beta float64) ([]TableSpec, error) {
	type pair struct{ u, v int }
	acc := make(map[pair]float64)
	var keys []pair
	for _, c := range quad {
		if c.U == c.V {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"coupler joins variable %d with itself", c.U)
		}
		p := pair{u: min(c.U, c.V), v: max(c.U, c.V)}
		if _, ok := acc[p]; !ok {
			keys = append(keys, p)
		}
		acc[p] += c.Bias
	}

	var specs []TableSpec
	for i, hv := range linear {
		switch vartype {
		case Spin:
			specs = append(specs, TableSpec{
				Scope:    []int{i},
				DomSizes: []int{2},
				Values:   []float64{beta * hv, -beta * hv},
			})
		case Binary:
			specs = append(specs, TableSpec{
				Scope:    []int{i},
				DomSizes: []int{2},
				Values:   []float64{0, -beta * hv},
			})
		}
	}
	for _, p := range keys {
		if acc[p] == 0 {
			continue
		}
		specs = append(specs, pairSpec(p.u, p.v, acc[p], beta, vartype))
	}
	return specs, nil
}

// pairSpec emits the pairwise table for a single coupler.
func pairSpec(u, v int, bias, beta float64, vartype Vartype) TableSpec {
	lo, hi := min(u, v), max(u, v)
	var values []float64
	switch vartype {
	case Spin:
		values = []float64{-beta * bias, beta * bias, beta * bias, -beta * bias}
	default:
		values = []float64{0, 0, 0, -beta * bias}
	}
	return TableSpec{Scope: []int{lo, hi}, DomSizes: []int{2, 2}, Values: values}
}

// StateValue maps a domain index back to the caller's convention: -1/+1
// for spin models, 0/1 for binary models.
func StateValue(index int, vartype Vartype) int {
	if vartype == Spin && index == 0 {
		return -1
	}
	return index
}

// States maps whole sample rows through StateValue.
func States(samples [][]int, vartype Vartype) [][]int {
	out := make([][]int, len(samples))
	for i, row := range samples {
		mapped := make([]int, len(row))
		for j, idx := range row {
			mapped[j] = StateValue(idx, vartype)
		}
		out[i] = mapped
	}
	return out
}
