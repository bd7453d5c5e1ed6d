package ops

import (
	"math"
	"slices"

	"github.com/matzehuels/factortree/pkg/table"
)

// LogSumOps is the sum-product algebra carried in log space: tables hold
// log-weights, combine is addition, and the marginalizer computes
// log(sum(exp)) with the usual max shift for stability. Its solvable form
// draws the eliminated variable from the induced conditional distribution,
// consuming one draw from Rng per call.
type LogSumOps struct {
	Rng Source
}

// NewLogSumOps returns a log-sum-product algebra drawing from rng.
func NewLogSumOps(rng Source) *LogSumOps {
	return &LogSumOps{Rng: rng}
}

// Combine implements log-space multiplication.
func (o *LogSumOps) Combine(a, b float64) float64 { return a + b }

// CombineIdentity returns the log-space multiplicative identity.
func (o *LogSumOps) CombineIdentity() float64 { return 0 }

// Marginalizer returns a stateless log-sum-exp marginalizer.
func (o *LogSumOps) Marginalizer() Marginalizer[float64] {
	return logSumMarginalizer{}
}

// SolvableMarginalizer returns a sampling marginalizer that records the
// cumulative conditional distribution of the eliminated variable per
// context.
func (o *LogSumOps) SolvableMarginalizer(ctxScope, ctxDomSizes []int, outVar, outDomSize int) SolvableMarginalizer[float64, []int] {
	return &samplingMarginalizer{
		rng:    o.Rng,
		steps:  buildSteps(ctxScope, ctxDomSizes),
		outVar: outVar,
		cdfs:   make(map[int][]float64),
	}
}

// InitSolution returns a fresh copy of x0 for the downward pass to fill.
func (o *LogSumOps) InitSolution(x0 []int) []int {
	return slices.Clone(x0)
}

// LogSumExp returns log(sum(exp(vals))) computed against the maximum.
func LogSumExp(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	sum := 0.0
	for _, v := range vals {
		sum += math.Exp(v - m)
	}
	return m + math.Log(sum)
}

type logSumMarginalizer struct{}

func (logSumMarginalizer) Marginalize(_ int, slice *table.Table[float64]) float64 {
	return LogSumExp(slice.Values())
}

type samplingMarginalizer struct {
	rng    Source
	steps  []varStep
	outVar int
	cdfs   map[int][]float64
}

func (m *samplingMarginalizer) Marginalize(outIndex int, slice *table.Table[float64]) float64 {
	vals := slice.Values()
	mx := vals[0]
	for _, v := range vals[1:] {
		if v > mx {
			mx = v
		}
	}
	cdf := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += math.Exp(v - mx)
		cdf[i] = sum
	}
	for i := range cdf {
		cdf[i] /= sum
	}
	m.cdfs[outIndex] = cdf
	return mx + math.Log(sum)
}

func (m *samplingMarginalizer) Solve(s []int) {
	cdf := m.cdfs[contextIndex(m.steps, s)]
	u := m.rng()
	pick := len(cdf) - 1
	for i, c := range cdf {
		if c >= u {
			pick = i
			break
		}
	}
	s[m.outVar] = pick
}
