package ops

import (
	"github.com/matzehuels/factortree/pkg/errors"
)

// Unit is the value type of the dummy algebra. Tables of Unit carry scope
// information and nothing else.
type Unit struct{}

// Dummy is the no-op algebra used by tasks that exist only to expose their
// primal graph and domain sizes, such as the input to the greedy
// elimination-order heuristic. Every numeric operation panics with an
// OPERATION_UNAVAILABLE error; callers that reach one hold a task that was
// never meant to be evaluated.
type Dummy struct{}

// Combine is unavailable.
func (Dummy) Combine(_, _ Unit) Unit {
	panic(errors.New(errors.ErrCodeOperationUnavailable, "dummy algebra cannot combine"))
}

// CombineIdentity is unavailable.
func (Dummy) CombineIdentity() Unit {
	panic(errors.New(errors.ErrCodeOperationUnavailable, "dummy algebra has no identity"))
}

// Marginalizer is unavailable.
func (Dummy) Marginalizer() Marginalizer[Unit] {
	panic(errors.New(errors.ErrCodeOperationUnavailable, "dummy algebra cannot marginalize"))
}

var _ Ops[Unit] = Dummy{}
