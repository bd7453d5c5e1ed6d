// Package ops provides the pluggable algebra driving the inference engine.
//
// An algebra ("operations") bundles a combine rule, its identity, and a
// marginalizer that collapses one variable of a unary table into a scalar.
// The instantiations are:
//
//   - [MinOps]: min-plus semiring for optimisation. Its solvable
//     marginalizer records argmins per context so a downward pass can
//     reconstruct the k best assignments.
//   - [LogSumOps]: sum-product in log space for partition functions and
//     exact Boltzmann sampling.
//   - [CountOps]: min-plus lifted to (value, count) pairs, counting tied
//     optima within a relative tolerance.
//   - [Dummy]: a unit algebra for tasks that only need scope information,
//     such as elimination ordering.
//
// Randomness enters through [Source], an explicit function returning
// uniform draws in [0, 1). There is no hidden global generator.
package ops

import (
	"github.com/matzehuels/factortree/pkg/table"
)

// Source produces uniform random numbers in [0, 1).
type Source func() float64

// Marginalizer collapses the single variable of a unary table into a
// scalar. The merger calls it once per context of the surrounding
// elimination; outIndex identifies that context.
type Marginalizer[Y any] interface {
	Marginalize(outIndex int, slice *table.Table[Y]) Y
}

// SolvableMarginalizer is a marginalizer that additionally remembers, per
// context, how to extend a partial solution with the eliminated variable.
// Solve mutates the solution in place.
type SolvableMarginalizer[Y, S any] interface {
	Marginalizer[Y]
	Solve(s S)
}

// Ops is the minimal algebra contract: an associative, commutative combine
// with identity, plus a marginalizer factory.
type Ops[Y any] interface {
	Combine(a, b Y) Y
	CombineIdentity() Y
	Marginalizer() Marginalizer[Y]
}

// SolvableOps extends Ops with solution reconstruction. The solvable
// marginalizer is created per bucket node: ctxScope and ctxDomSizes
// describe the separator (the scope remaining after elimination), outVar
// and outDomSize the variable being eliminated.
type SolvableOps[Y, S any] interface {
	Ops[Y]
	SolvableMarginalizer(ctxScope, ctxDomSizes []int, outVar, outDomSize int) SolvableMarginalizer[Y, S]
	InitSolution(x0 []int) S
}

// varStep maps a solution variable to its stride within a context index.
type varStep struct {
	v    int
	step int
}

func buildSteps(scope, domSizes []int) []varStep {
	steps := make([]varStep, len(scope))
	step := 1
	for i, v := range scope {
		steps[i] = varStep{v: v, step: step}
		step *= domSizes[i]
	}
	return steps
}

func contextIndex(steps []varStep, x []int) int {
	idx := 0
	for _, s := range steps {
		idx += x[s.v] * s.step
	}
	return idx
}
