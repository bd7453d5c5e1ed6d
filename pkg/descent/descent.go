// Package descent implements steepest-descent local search over Ising
// models.
//
// Each run repeatedly flips the single spin with the most negative energy
// delta until no flip improves the energy, yielding a local minimum of the
// Hamiltonian. Runs are deterministic given their starting state.
package descent

import (
	"math/rand"
	"time"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
)

// Options configures a descent run.
type Options struct {
	// NumRuns is the number of descents. Run i starts from InitStates[i]
	// when that entry exists; remaining runs start from random states.
	NumRuns int
	// InitStates optionally seeds the runs, one spin vector per run.
	InitStates [][]int
	// Seed seeds the random starting states; negative means time-derived.
	Seed int64
}

// Result holds one local minimum per run, sorted by energy ascending.
type Result struct {
	States   [][]int
	Energies []float64
	Steps    []int
}

// Run descends the Ising model given by linear biases h and couplers.
func Run(h []float64, couplers []model.Coupler, opts Options) (*Result, error) {
	n := len(h)
	for _, c := range couplers {
		if c.U == c.V {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"coupler joins variable %d with itself", c.U)
		}
		if m := max(c.U, c.V) + 1; m > n {
			n = m
		}
	}
	if opts.NumRuns < 1 {
		opts.NumRuns = 1
	}
	for i, s := range opts.InitStates {
		if len(s) != n {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"initial state %d has %d spins for %d variables", i, len(s), n)
		}
	}

	hFull := make([]float64, n)
	copy(hFull, h)
	neighbors := make([][]int, n)
	couplings := make([][]float64, n)
	for _, c := range couplers {
		neighbors[c.U] = append(neighbors[c.U], c.V)
		couplings[c.U] = append(couplings[c.U], c.Bias)
		neighbors[c.V] = append(neighbors[c.V], c.U)
		couplings[c.V] = append(couplings[c.V], c.Bias)
	}

	seed := opts.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	result := &Result{}
	for run := 0; run < opts.NumRuns; run++ {
		state := make([]int, n)
		if run < len(opts.InitStates) {
			copy(state, opts.InitStates[run])
		} else {
			for v := range state {
				if rng.Float64() < 0.5 {
					state[v] = -1
				} else {
					state[v] = 1
				}
			}
		}

		steps := 0
		for {
			bestVar, bestDelta := -1, 0.0
			for v := 0; v < n; v++ {
				contrib := hFull[v]
				for i, u := range neighbors[v] {
					contrib += float64(state[u]) * couplings[v][i]
				}
				delta := -2 * float64(state[v]) * contrib
				if delta < bestDelta {
					bestVar, bestDelta = v, delta
				}
			}
			if bestVar < 0 {
				break
			}
			state[bestVar] = -state[bestVar]
			steps++
		}

		energy := 0.0
		for v, hv := range hFull {
			energy += float64(state[v]) * hv
		}
		for _, c := range couplers {
			energy += float64(state[c.U]) * c.Bias * float64(state[c.V])
		}

		result.States = append(result.States, state)
		result.Energies = append(result.Energies, energy)
		result.Steps = append(result.Steps, steps)
	}

	sortByEnergy(result)
	return result, nil
}

func sortByEnergy(r *Result) {
	for i := 1; i < len(r.Energies); i++ {
		for j := i; j > 0 && r.Energies[j] < r.Energies[j-1]; j-- {
			r.Energies[j], r.Energies[j-1] = r.Energies[j-1], r.Energies[j]
			r.States[j], r.States[j-1] = r.States[j-1], r.States[j]
			r.Steps[j], r.Steps[j-1] = r.Steps[j-1], r.Steps[j]
		}
	}
}
