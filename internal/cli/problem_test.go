package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/model"
)

func writeProblem(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProblemTables(t *testing.T) {
	path := writeProblem(t, `{
		"tables": [
			{"scope": [0, 1], "domSizes": [2, 2], "values": [0, 1, 2, 3]}
		],
		"minVars": 3
	}`)
	p, err := loadProblem(path, 0)
	if err != nil {
		t.Fatalf("loadProblem: %v", err)
	}
	if len(p.Specs) != 1 || p.MinVars != 3 || p.Binary {
		t.Errorf("problem = %+v", p)
	}
	if problemVars(p) != 3 {
		t.Errorf("problemVars = %d, want 3", problemVars(p))
	}
}

func TestLoadProblemIsing(t *testing.T) {
	path := writeProblem(t, `{
		"ising": {"h": [1, 0], "j": [[0, -1], [0, 0]]},
		"beta": 2
	}`)
	p, err := loadProblem(path, 0)
	if err != nil {
		t.Fatalf("loadProblem: %v", err)
	}
	if !p.Binary || p.Vartype != model.Spin {
		t.Errorf("problem = %+v", p)
	}
	// One unary (h0) plus one pairwise (J01).
	if len(p.Specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(p.Specs))
	}
	if p.Specs[0].Values[0] != 2 || p.Specs[0].Values[1] != -2 {
		t.Errorf("unary values = %v, want beta-scaled", p.Specs[0].Values)
	}
	if p.MinVars != 2 {
		t.Errorf("MinVars = %d, want 2", p.MinVars)
	}
}

func TestLoadProblemBetaOverride(t *testing.T) {
	path := writeProblem(t, `{"ising": {"h": [1], "j": []}, "beta": 2}`)
	p, err := loadProblem(path, -1)
	if err != nil {
		t.Fatalf("loadProblem: %v", err)
	}
	if p.Specs[0].Values[0] != -1 {
		t.Errorf("values = %v, want beta=-1 applied", p.Specs[0].Values)
	}
}

func TestLoadProblemRejectsMultipleSections(t *testing.T) {
	path := writeProblem(t, `{
		"tables": [{"scope": [0], "domSizes": [2], "values": [0, 0]}],
		"qubo": {"q": [[1]]}
	}`)
	_, err := loadProblem(path, 0)
	if !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("error = %v, want INVALID_ARG", err)
	}
}

func TestLoadIsingTerms(t *testing.T) {
	path := writeProblem(t, `{
		"coo": {
			"linear": [0.5, 0, 0],
			"quadratic": [{"u": 0, "v": 1, "bias": -1}, {"u": 1, "v": 2, "bias": 2}],
			"vartype": "spin"
		}
	}`)
	h, couplers, err := loadIsingTerms(path)
	if err != nil {
		t.Fatalf("loadIsingTerms: %v", err)
	}
	if len(h) != 3 || h[0] != 0.5 {
		t.Errorf("h = %v", h)
	}
	if len(couplers) != 2 || couplers[1].Bias != 2 {
		t.Errorf("couplers = %+v", couplers)
	}
}

func TestLoadIsingTermsRejectsTables(t *testing.T) {
	path := writeProblem(t, `{"tables": [{"scope": [0], "domSizes": [2], "values": [0, 0]}]}`)
	if _, _, err := loadIsingTerms(path); !errors.Is(err, errors.ErrCodeInvalidArg) {
		t.Errorf("error = %v, want INVALID_ARG", err)
	}
}

func TestParseIntList(t *testing.T) {
	got, err := parseIntList("0, 3,2")
	if err != nil || len(got) != 3 || got[1] != 3 {
		t.Errorf("parseIntList = %v, %v", got, err)
	}
	if got, err := parseIntList(""); err != nil || got != nil {
		t.Errorf("parseIntList(\"\") = %v, %v", got, err)
	}
	if _, err := parseIntList("1,x"); err == nil {
		t.Error("parseIntList(1,x) succeeded")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.MaxComplexity != 20 || cfg.Heuristic != "min-fill" || cfg.Cache.Backend != "file" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "max_complexity = 12.5\nheuristic = \"w-min-deg\"\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.MaxComplexity != 12.5 || cfg.Heuristic != "w-min-deg" || cfg.Cache.Backend != "none" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("unset sections lost defaults: %+v", cfg.Serve)
	}
}
