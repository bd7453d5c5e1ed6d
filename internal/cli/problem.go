package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
)

// problemFile is the JSON problem description accepted by all commands.
// Exactly one of Tables, Ising, QUBO or COO must be set.
type problemFile struct {
	Tables []model.TableSpec `json:"tables"`
	Ising  *isingProblem     `json:"ising"`
	QUBO   *quboProblem      `json:"qubo"`
	COO    *cooProblem       `json:"coo"`
	// Beta is the inverse temperature applied by the adapters; defaults
	// to 1 for sampling. Optimisation negates the tables itself.
	Beta    *float64 `json:"beta"`
	MinVars int      `json:"minVars"`
}

type isingProblem struct {
	H []float64   `json:"h"`
	J [][]float64 `json:"j"`
}

type quboProblem struct {
	Q [][]float64 `json:"q"`
}

type cooProblem struct {
	Linear    []float64 `json:"linear"`
	Quadratic []struct {
		U    int     `json:"u"`
		V    int     `json:"v"`
		Bias float64 `json:"bias"`
	} `json:"quadratic"`
	Vartype string `json:"vartype"` // "spin" or "binary"
}

// problem is a loaded, adapter-expanded problem.
type problem struct {
	Specs   []model.TableSpec
	MinVars int
	Vartype model.Vartype
	// Binary reports whether the problem came through a binary-model
	// adapter, so states can be mapped back to -1/+1 or 0/1.
	Binary bool
}

// loadProblem reads a problem file ("-" for stdin) and expands any
// adapter section into table specs. beta overrides the file's beta when
// non-zero.
func loadProblem(path string, beta float64) (*problem, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var pf problemFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArg, err, "decode problem")
	}
	if beta == 0 {
		beta = 1
		if pf.Beta != nil {
			beta = *pf.Beta
		}
	}

	p := &problem{MinVars: pf.MinVars}
	sections := 0
	if pf.Tables != nil {
		sections++
		p.Specs = pf.Tables
	}
	if pf.Ising != nil {
		sections++
		specs, err := model.Ising(pf.Ising.H, pf.Ising.J, beta)
		if err != nil {
			return nil, err
		}
		p.Specs = specs
		p.Vartype = model.Spin
		p.Binary = true
		if n := len(pf.Ising.H); n > p.MinVars {
			p.MinVars = n
		}
	}
	if pf.QUBO != nil {
		sections++
		p.Specs = model.QUBO(pf.QUBO.Q, beta)
		p.Vartype = model.Binary
		p.Binary = true
		if n := len(pf.QUBO.Q); n > p.MinVars {
			p.MinVars = n
		}
	}
	if pf.COO != nil {
		sections++
		vartype := model.Spin
		if pf.COO.Vartype == "binary" {
			vartype = model.Binary
		}
		quad := make([]model.Coupler, len(pf.COO.Quadratic))
		for i, q := range pf.COO.Quadratic {
			quad[i] = model.Coupler{U: q.U, V: q.V, Bias: q.Bias}
		}
		specs, err := model.COO(pf.COO.Linear, quad, vartype, beta)
		if err != nil {
			return nil, err
		}
		p.Specs = specs
		p.Vartype = vartype
		p.Binary = true
		if n := len(pf.COO.Linear); n > p.MinVars {
			p.MinVars = n
		}
	}
	if sections != 1 {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"problem file must contain exactly one of tables, ising, qubo or coo")
	}
	return p, nil
}

// loadIsingTerms extracts (h, couplers) from a problem file for the
// approximate solvers, which work on Ising models directly.
func loadIsingTerms(path string) ([]float64, []model.Coupler, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var pf problemFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArg, err, "decode problem")
	}

	switch {
	case pf.Ising != nil:
		var couplers []model.Coupler
		for u, row := range pf.Ising.J {
			for v, bias := range row {
				if bias != 0 {
					couplers = append(couplers, model.Coupler{U: u, V: v, Bias: bias})
				}
			}
		}
		return pf.Ising.H, couplers, nil
	case pf.COO != nil && pf.COO.Vartype != "binary":
		quad := make([]model.Coupler, len(pf.COO.Quadratic))
		for i, q := range pf.COO.Quadratic {
			quad[i] = model.Coupler{U: q.U, V: q.V, Bias: q.Bias}
		}
		return pf.COO.Linear, quad, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidArg,
		"this command needs an ising or spin-valued coo problem")
}
