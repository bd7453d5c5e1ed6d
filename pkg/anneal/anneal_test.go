package anneal

import (
	"testing"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
)

// ferromagneticChain couples adjacent spins with J = -1, so both ground
// states are the two aligned configurations with energy -(n-1).
func ferromagneticChain(n int) ([]float64, []model.Coupler) {
	h := make([]float64, n)
	var couplers []model.Coupler
	for v := 0; v+1 < n; v++ {
		couplers = append(couplers, model.Coupler{U: v, V: v + 1, Bias: -1})
	}
	return h, couplers
}

func TestRunFindsFerromagnetGroundState(t *testing.T) {
	h, couplers := ferromagneticChain(8)
	result, err := Run(h, couplers, Options{
		NumReads:  20,
		NumSweeps: 200,
		Seed:      7,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Energies) != 20 {
		t.Fatalf("got %d reads, want 20", len(result.Energies))
	}
	if result.Energies[0] != -7 {
		t.Errorf("best energy = %v, want -7", result.Energies[0])
	}
	best := result.States[0]
	for _, s := range best[1:] {
		if s != best[0] {
			t.Errorf("ground state not aligned: %v", best)
			break
		}
	}
	for i := 1; i < len(result.Energies); i++ {
		if result.Energies[i] < result.Energies[i-1] {
			t.Errorf("energies not sorted at %d: %v", i, result.Energies)
		}
	}
}

func TestRunWithField(t *testing.T) {
	// A strong field pins every spin down.
	h := []float64{2, 2, 2}
	result, err := Run(h, nil, Options{NumReads: 5, NumSweeps: 100, Seed: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Energies[0] != -6 {
		t.Errorf("best energy = %v, want -6", result.Energies[0])
	}
	for _, s := range result.States[0] {
		if s != -1 {
			t.Errorf("state = %v, want all -1", result.States[0])
			break
		}
	}
}

func TestRunReproducible(t *testing.T) {
	h, couplers := ferromagneticChain(6)
	opts := Options{NumReads: 5, NumSweeps: 50, Seed: 42}
	a, err := Run(h, couplers, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(h, couplers, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Energies {
		if a.Energies[i] != b.Energies[i] {
			t.Fatalf("energies differ across identical seeded runs")
		}
	}
}

func TestRunInterrupt(t *testing.T) {
	h, couplers := ferromagneticChain(6)
	calls := 0
	result, err := Run(h, couplers, Options{
		NumReads:  100,
		NumSweeps: 10,
		Seed:      1,
		Interrupt: func() bool { calls++; return calls > 3 },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Energies) != 3 {
		t.Errorf("got %d reads, want 3 before interruption", len(result.Energies))
	}
}

func TestRunSelfCoupler(t *testing.T) {
	_, err := Run([]float64{0}, []model.Coupler{{U: 0, V: 0, Bias: 1}}, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("error = %v, want INVALID_ARG", err)
	}
}
