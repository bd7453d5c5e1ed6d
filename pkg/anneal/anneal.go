// Package anneal implements classical simulated annealing over Ising
// models.
//
// The annealer runs independent restarts ("reads"). Each read starts from
// a uniform random spin state and performs Metropolis sweeps along a
// geometric inverse-temperature ladder: a flip lowering the energy is
// always accepted, any other flip with probability exp(-beta * delta).
// This is the approximate counterpart to the exact bucket-tree solver and
// is useful when no low-complexity elimination order exists.
package anneal

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
)

// Options configures an annealing run.
type Options struct {
	// NumReads is the number of independent restarts.
	NumReads int
	// NumSweeps is the number of full-variable sweeps per read.
	NumSweeps int
	// BetaMin and BetaMax bound the geometric inverse-temperature ladder.
	// Zero values select a range derived from the bias magnitudes.
	BetaMin float64
	BetaMax float64
	// Seed seeds the generator; negative means time-derived.
	Seed int64
	// Interrupt, when non-nil, is polled between reads; returning true
	// stops the run and returns the reads completed so far.
	Interrupt func() bool
	// Progress, when non-nil, is called after each read with the read
	// index and the best energy seen so far.
	Progress func(read int, bestEnergy float64)
}

// Result holds one state and energy per completed read, best first.
type Result struct {
	States   [][]int
	Energies []float64
}

// problem is the neighbour-list form of an Ising model.
type problem struct {
	h         []float64
	neighbors [][]int
	couplings [][]float64
	couplers  []model.Coupler
}

func buildProblem(h []float64, couplers []model.Coupler) (*problem, error) {
	n := len(h)
	for _, c := range couplers {
		if c.U == c.V {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"coupler joins variable %d with itself", c.U)
		}
		if c.U < 0 || c.V < 0 {
			return nil, errors.New(errors.ErrCodeInvalidArg, "negative variable index")
		}
		if m := max(c.U, c.V) + 1; m > n {
			n = m
		}
	}
	p := &problem{
		h:         make([]float64, n),
		neighbors: make([][]int, n),
		couplings: make([][]float64, n),
		couplers:  couplers,
	}
	copy(p.h, h)
	for _, c := range couplers {
		p.neighbors[c.U] = append(p.neighbors[c.U], c.V)
		p.couplings[c.U] = append(p.couplings[c.U], c.Bias)
		p.neighbors[c.V] = append(p.neighbors[c.V], c.U)
		p.couplings[c.V] = append(p.couplings[c.V], c.Bias)
	}
	return p, nil
}

// flipDelta returns the energy change of flipping spin v in state.
func (p *problem) flipDelta(v int, state []int) float64 {
	contrib := p.h[v]
	for i, u := range p.neighbors[v] {
		contrib += float64(state[u]) * p.couplings[v][i]
	}
	return -2 * float64(state[v]) * contrib
}

// energy returns the Ising energy of state.
func (p *problem) energy(state []int) float64 {
	e := 0.0
	for v, hv := range p.h {
		e += float64(state[v]) * hv
	}
	for _, c := range p.couplers {
		e += float64(state[c.U]) * c.Bias * float64(state[c.V])
	}
	return e
}

// betaRange derives a default ladder from the bias magnitudes: hot enough
// to accept almost any move, cold enough to freeze single-spin flips.
func (p *problem) betaRange() (float64, float64) {
	maxField := 0.0
	minBias := math.Inf(1)
	for v := range p.h {
		field := math.Abs(p.h[v])
		if field > 0 && field < minBias {
			minBias = field
		}
		for i := range p.neighbors[v] {
			j := math.Abs(p.couplings[v][i])
			field += j
			if j > 0 && j < minBias {
				minBias = j
			}
		}
		if field > maxField {
			maxField = field
		}
	}
	if maxField == 0 || math.IsInf(minBias, 1) {
		return 0.1, 1.0
	}
	return math.Log(2) / (2 * maxField), math.Log(100) / (2 * minBias)
}

// Run anneals the Ising model given by linear biases h and couplers.
// States are spin vectors over {-1, +1}, sorted by energy ascending.
func Run(h []float64, couplers []model.Coupler, opts Options) (*Result, error) {
	p, err := buildProblem(h, couplers)
	if err != nil {
		return nil, err
	}
	if opts.NumReads < 1 {
		opts.NumReads = 1
	}
	if opts.NumSweeps < 1 {
		opts.NumSweeps = 1000
	}
	betaMin, betaMax := opts.BetaMin, opts.BetaMax
	if betaMin <= 0 || betaMax <= 0 {
		betaMin, betaMax = p.betaRange()
	}
	seed := opts.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := len(p.h)
	betas := schedule(betaMin, betaMax, opts.NumSweeps)
	result := &Result{}
	best := math.Inf(1)

	for read := 0; read < opts.NumReads; read++ {
		if opts.Interrupt != nil && opts.Interrupt() {
			break
		}
		state := make([]int, n)
		for v := range state {
			if rng.Float64() < 0.5 {
				state[v] = -1
			} else {
				state[v] = 1
			}
		}
		for _, beta := range betas {
			for v := 0; v < n; v++ {
				delta := p.flipDelta(v, state)
				if delta <= 0 || rng.Float64() < math.Exp(-beta*delta) {
					state[v] = -state[v]
				}
			}
		}
		e := p.energy(state)
		result.States = append(result.States, state)
		result.Energies = append(result.Energies, e)
		if e < best {
			best = e
		}
		if opts.Progress != nil {
			opts.Progress(read, best)
		}
	}

	sortByEnergy(result)
	return result, nil
}

// schedule returns a geometric ladder from betaMin to betaMax inclusive.
func schedule(betaMin, betaMax float64, sweeps int) []float64 {
	betas := make([]float64, sweeps)
	if sweeps == 1 {
		betas[0] = betaMax
		return betas
	}
	ratio := math.Pow(betaMax/betaMin, 1/float64(sweeps-1))
	b := betaMin
	for i := range betas {
		betas[i] = b
		b *= ratio
	}
	return betas
}

func sortByEnergy(r *Result) {
	idx := make([]int, len(r.Energies))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case r.Energies[a] < r.Energies[b]:
			return -1
		case r.Energies[a] > r.Energies[b]:
			return 1
		}
		return 0
	})
	states := make([][]int, len(idx))
	energies := make([]float64, len(idx))
	for i, k := range idx {
		states[i] = r.States[k]
		energies[i] = r.Energies[k]
	}
	r.States = states
	r.Energies = energies
}
