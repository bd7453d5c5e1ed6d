// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about solver runs and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the engine free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSolverHooks(&mySolverHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Solver().OnSolveStart(ctx, "sample", numVars)
//	// ... run the bucket tree ...
//	observability.Solver().OnSolveComplete(ctx, "sample", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Solver Hooks
// =============================================================================

// SolverHooks receives events from solver entry points.
type SolverHooks interface {
	// Ordering events
	OnOrderStart(ctx context.Context, heuristic string, numVars int)
	OnOrderComplete(ctx context.Context, heuristic string, orderLen int, duration time.Duration, err error)

	// Decomposition events
	OnDecompBuilt(ctx context.Context, nodes int, complexity float64)

	// Solve events; kind is "optimize", "sample" or "count".
	OnSolveStart(ctx context.Context, kind string, numVars int)
	OnSolveComplete(ctx context.Context, kind string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSolverHooks is a no-op implementation of SolverHooks.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnOrderStart(context.Context, string, int)                             {}
func (NoopSolverHooks) OnOrderComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopSolverHooks) OnDecompBuilt(context.Context, int, float64)                           {}
func (NoopSolverHooks) OnSolveStart(context.Context, string, int)                             {}
func (NoopSolverHooks) OnSolveComplete(context.Context, string, time.Duration, error)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Registration
// =============================================================================

var (
	mu          sync.RWMutex
	solverHooks SolverHooks = NoopSolverHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
)

// SetSolverHooks registers solver hooks. Pass nil to restore the no-op.
func SetSolverHooks(h SolverHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		solverHooks = NoopSolverHooks{}
		return
	}
	solverHooks = h
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks {
	mu.RLock()
	defer mu.RUnlock()
	return solverHooks
}

// SetCacheHooks registers cache hooks. Pass nil to restore the no-op.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = NoopCacheHooks{}
		return
	}
	cacheHooks = h
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
