package observability

import (
	"context"
	"testing"
	"time"
)

type recordingSolverHooks struct {
	NoopSolverHooks
	solveStarts int
}

func (h *recordingSolverHooks) OnSolveStart(ctx context.Context, kind string, numVars int) {
	h.solveStarts++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits++
}

func TestSolverHookRegistration(t *testing.T) {
	defer SetSolverHooks(nil)

	rec := &recordingSolverHooks{}
	SetSolverHooks(rec)
	Solver().OnSolveStart(context.Background(), "optimize", 5)
	Solver().OnSolveComplete(context.Background(), "optimize", time.Second, nil)
	if rec.solveStarts != 1 {
		t.Errorf("solveStarts = %d, want 1", rec.solveStarts)
	}

	SetSolverHooks(nil)
	if _, ok := Solver().(NoopSolverHooks); !ok {
		t.Error("SetSolverHooks(nil) did not restore the no-op")
	}
}

func TestCacheHookRegistration(t *testing.T) {
	defer SetCacheHooks(nil)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	Cache().OnCacheHit(context.Background(), "order")
	Cache().OnCacheMiss(context.Background(), "order")
	if rec.hits != 1 {
		t.Errorf("hits = %d, want 1", rec.hits)
	}
}
