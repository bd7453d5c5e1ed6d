// Package model translates problem descriptions into factor tables.
//
// The primary input is a list of [TableSpec] values mirroring the table
// data model: scope, domain sizes, packed values. Adapters build such
// tables from Ising (h, J), QUBO (Q), and sparse COO descriptions of
// binary models, encoding -beta times the energy so that log-sum-product
// inference yields Boltzmann statistics and min-plus inference with
// beta = -1 yields energy minimisation.
package model

import (
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/table"
)

// TableSpec describes one input factor table.
type TableSpec struct {
	Scope    []int     `json:"scope"`
	DomSizes []int     `json:"domSizes"`
	Values   []float64 `json:"values"`
}

// Tables builds value tables from specs. Scope and size validation follows
// the table package; a values slice of the wrong length is INVALID_ARG.
func Tables(specs []TableSpec) ([]*table.Table[float64], error) {
	out := make([]*table.Table[float64], 0, len(specs))
	for i, s := range specs {
		t, err := table.New[float64](s.Scope, s.DomSizes)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "table %d", i)
		}
		if err := t.SetValues(s.Values); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidArg, err, "table %d", i)
		}
		out = append(out, t)
	}
	return out, nil
}

// CountTables builds (value, count) tables from specs, seeding every entry
// with a count of one.
func CountTables(specs []TableSpec) ([]*table.Table[ops.ValueCount], error) {
	out := make([]*table.Table[ops.ValueCount], 0, len(specs))
	for i, s := range specs {
		t, err := table.New[ops.ValueCount](s.Scope, s.DomSizes)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "table %d", i)
		}
		if len(s.Values) != t.Size() {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"table %d: got %d values for a table of size %d", i, len(s.Values), t.Size())
		}
		vals := t.Values()
		for j, v := range s.Values {
			vals[j] = ops.ValueCount{Value: v, Count: 1}
		}
		out = append(out, t)
	}
	return out, nil
}

// UnitTables builds scope-only tables from specs for ordering tasks. The
// values are checked for length and then discarded.
func UnitTables(specs []TableSpec) ([]*table.Table[ops.Unit], error) {
	out := make([]*table.Table[ops.Unit], 0, len(specs))
	for i, s := range specs {
		t, err := table.New[ops.Unit](s.Scope, s.DomSizes)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "table %d", i)
		}
		if s.Values != nil && len(s.Values) != t.Size() {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"table %d: got %d values for a table of size %d", i, len(s.Values), t.Size())
		}
		out = append(out, t)
	}
	return out, nil
}

// ValidateOrder checks an elimination order against the variable count:
// every entry must be in range and appear at most once.
func ValidateOrder(order []int, numVars int) error {
	seen := make([]bool, numVars)
	for _, v := range order {
		if v < 0 || v >= numVars {
			return errors.New(errors.ErrCodeInvalidArg,
				"elimination order contains %d but there are only %d variables", v, numVars)
		}
		if seen[v] {
			return errors.New(errors.ErrCodeInvalidArg,
				"variable %d appears more than once in the elimination order", v)
		}
		seen[v] = true
	}
	return nil
}
