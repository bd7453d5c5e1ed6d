// Package store persists sampling runs for later retrieval.
//
// The HTTP API archives every sampling run (log partition function,
// marginals, sample count) under a generated run ID so clients can fetch
// results asynchronously. Two backends implement the Store interface:
// an in-memory map for development and tests, and MongoDB for server
// deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/factortree/pkg/solver"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("run not found")
)

// Run is the archived record of one sampling run.
type Run struct {
	ID         string            `bson:"_id" json:"id"`
	CreatedAt  time.Time         `bson:"created_at" json:"createdAt"`
	NumVars    int               `bson:"num_vars" json:"numVars"`
	NumSamples int               `bson:"num_samples" json:"numSamples"`
	LogZ       float64           `bson:"log_z" json:"logZ"`
	Samples    [][]int           `bson:"samples,omitempty" json:"samples,omitempty"`
	Marginals  []solver.Marginal `bson:"marginals,omitempty" json:"marginals,omitempty"`
}

// Store is the interface for run archival backends.
type Store interface {
	// Put stores a run, overwriting any run with the same ID.
	Put(ctx context.Context, run Run) error

	// Get retrieves a run by ID. Returns ErrNotFound when missing.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
