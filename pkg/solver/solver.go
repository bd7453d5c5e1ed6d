// Package solver exposes the table-based entry points of the inference
// engine: elimination ordering, optimisation (k-best), Boltzmann sampling
// with marginals, and counting of tied optima.
//
// Every entry point takes the problem as a list of [model.TableSpec]
// values plus a complexity budget, builds the task and tree decomposition
// internally, and returns results allocated on success only. Randomised
// entry points accept either an explicit [ops.Source] or a seed; the same
// seed with the same input reproduces results bit-exactly.
package solver

import (
	"math/rand"
	"time"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/infer"
	"github.com/matzehuels/factortree/pkg/ops"
)

// rngFromSeed returns a uniform source for the given seed. Negative seeds
// derive one from the wall clock.
func rngFromSeed(seed int64) ops.Source {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)).Float64
}

// initState normalises an initial-state argument: nil or empty becomes all
// zeros, anything else must cover every variable.
func initState(x0 []int, numVars int) ([]int, error) {
	if len(x0) == 0 {
		return make([]int, numVars), nil
	}
	if len(x0) != numVars {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"initial state has %d entries for %d variables", len(x0), numVars)
	}
	return x0, nil
}

// buildDecomp constructs the tree decomposition for a validated order and
// enforces the complexity budget.
func buildDecomp[Y any](task *infer.Task[Y], order []int, maxComplexity float64) (*decomp.TreeDecomp, error) {
	dec, err := decomp.New(task.Graph(), order, task.DomSizes())
	if err != nil {
		return nil, err
	}
	if dec.Complexity() > maxComplexity {
		return nil, errors.New(errors.ErrCodeComplexityExceeded,
			"tree decomposition complexity %.4g exceeds budget %.4g",
			dec.Complexity(), maxComplexity)
	}
	return dec, nil
}
