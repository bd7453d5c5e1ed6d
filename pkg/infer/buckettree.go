package infer

import (
	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/errors"
	"github.com/matzehuels/factortree/pkg/ops"
	"github.com/matzehuels/factortree/pkg/table"
)

// NodeTables is the retained bucket content of one node: its base tables,
// the upward messages from its children, and the downward message from its
// parent (when non-trivial).
type NodeTables[Y any] struct {
	NodeVar int
	SepVars []int
	Tables  []*table.Table[Y]
}

// BucketTree executes the two-pass elimination algorithm over a tree
// decomposition. Construction runs the upward pass; the problem value is
// available immediately afterwards. With solvable enabled, Solve walks the
// tree downward reconstructing assignments (argmins or samples, depending
// on the algebra); it may be called repeatedly, and in sampling mode each
// call consumes fresh random draws. With keepNodeTables enabled, the
// per-node tables remain available for marginal extraction.
//
// A BucketTree is single-owner: it must not be shared across goroutines.
type BucketTree[Y, S any] struct {
	task     *Task[Y]
	dec      *decomp.TreeDecomp
	x0       []int
	solvable bool
	keep     bool

	sops         ops.SolvableOps[Y, S]
	problemValue Y
	solvers      []ops.SolvableMarginalizer[Y, S]
	nodeTabs     [][]*table.Table[Y]
	lambdaOf     []*table.Table[Y] // upward message produced by each node
}

// NewBucketTree builds the tree and runs the upward pass. x0 supplies the
// values of clamped variables; nil means all zeros. The solvable flag
// requires the task's algebra to implement [ops.SolvableOps] for the same
// solution type.
func NewBucketTree[Y, S any](task *Task[Y], dec *decomp.TreeDecomp, x0 []int, solvable, keepNodeTables bool) (*BucketTree[Y, S], error) {
	if x0 == nil {
		x0 = make([]int, task.NumVars())
	}
	if len(x0) != task.NumVars() {
		return nil, errors.New(errors.ErrCodeInvalidArg,
			"initial state has %d entries for %d variables", len(x0), task.NumVars())
	}
	for v, a := range x0 {
		if a < 0 || a >= task.DomSize(v) {
			return nil, errors.New(errors.ErrCodeInvalidArg,
				"initial state value %d out of range for variable %d (domain size %d)",
				a, v, task.DomSize(v))
		}
	}

	bt := &BucketTree[Y, S]{
		task:     task,
		dec:      dec,
		x0:       x0,
		solvable: solvable,
		keep:     keepNodeTables,
		lambdaOf: make([]*table.Table[Y], dec.Size()),
	}
	if solvable {
		so, ok := task.Ops().(ops.SolvableOps[Y, S])
		if !ok {
			return nil, errors.New(errors.ErrCodeOperationUnavailable,
				"algebra does not support solution reconstruction")
		}
		bt.sops = so
		bt.solvers = make([]ops.SolvableMarginalizer[Y, S], dec.Size())
	}
	if keepNodeTables {
		bt.nodeTabs = make([][]*table.Table[Y], dec.Size())
	}

	if err := bt.upward(); err != nil {
		return nil, err
	}
	if keepNodeTables {
		if err := bt.downwardTables(); err != nil {
			return nil, err
		}
	}
	return bt, nil
}

// upward runs the lambda pass: postorder over each root, merging every
// bucket to its separator while eliminating the node variable.
func (bt *BucketTree[Y, S]) upward() error {
	merger := NewMerger(bt.task)
	childLams := make([][]*table.Table[Y], bt.dec.Size())
	var rootValues []Y

	for _, root := range bt.dec.Roots() {
		for _, id := range bt.postorder(root) {
			n := bt.dec.Node(id)
			tabs := bt.task.BaseTables(n, bt.x0)
			tabs = append(tabs, childLams[id]...)
			childLams[id] = nil

			// A variable mentioned by no bucket table still has to be
			// eliminated (and, in solvable mode, reconstructed).
			if !anyHasVar(tabs, n.Var) {
				empty, err := table.New[Y]([]int{n.Var}, []int{bt.task.DomSize(n.Var)})
				if err != nil {
					return err
				}
				fillIdentity(empty, bt.task.Ops())
				tabs = append(tabs, empty)
			}

			if bt.keep {
				bt.nodeTabs[id] = tabs
			}

			var marg ops.Marginalizer[Y]
			if bt.solvable {
				sepDoms := make([]int, len(n.SepVars))
				for i, v := range n.SepVars {
					sepDoms[i] = bt.task.DomSize(v)
				}
				sm := bt.sops.SolvableMarginalizer(n.SepVars, sepDoms, n.Var, bt.task.DomSize(n.Var))
				bt.solvers[id] = sm
				marg = sm
			} else {
				marg = bt.task.Ops().Marginalizer()
			}

			lam, err := merger.Merge(n.SepVars, tabs, marg)
			if err != nil {
				return err
			}
			bt.lambdaOf[id] = lam
			if n.Parent >= 0 {
				childLams[n.Parent] = append(childLams[n.Parent], lam)
			} else {
				rootValues = append(rootValues, lam.At(0))
			}
		}
	}

	bt.problemValue = bt.task.ProblemValue(rootValues, bt.x0, bt.dec.ClampedVars())
	return nil
}

// downwardTables runs the pi pass, extending each retained bucket with the
// downward message from its parent. The message for node n is the merge,
// to n's separator, of the parent's tables minus n's own upward message;
// an empty input list yields no message.
func (bt *BucketTree[Y, S]) downwardTables() error {
	merger := NewMerger(bt.task)
	marg := bt.task.Ops().Marginalizer()

	for _, root := range bt.dec.Roots() {
		for _, id := range bt.preorder(root) {
			n := bt.dec.Node(id)
			if n.Parent < 0 {
				continue
			}
			var inputs []*table.Table[Y]
			for _, t := range bt.nodeTabs[n.Parent] {
				if t != bt.lambdaOf[id] {
					inputs = append(inputs, t)
				}
			}
			if len(inputs) == 0 {
				continue
			}
			pi, err := merger.Merge(n.SepVars, inputs, marg)
			if err != nil {
				return err
			}
			bt.nodeTabs[id] = append(bt.nodeTabs[id], pi)
		}
	}
	return nil
}

// ProblemValue returns the combined value of the upward pass: the optimum
// under min-plus, the log partition function under log-sum-product, the
// (value, count) pair under count-min.
func (bt *BucketTree[Y, S]) ProblemValue() Y { return bt.problemValue }

// Task returns the underlying task.
func (bt *BucketTree[Y, S]) Task() *Task[Y] { return bt.task }

// Decomp returns the underlying tree decomposition.
func (bt *BucketTree[Y, S]) Decomp() *decomp.TreeDecomp { return bt.dec }

// Solve runs the downward pass, reconstructing assignments. Fails with
// OPERATION_UNAVAILABLE when the tree was built with solvable disabled.
func (bt *BucketTree[Y, S]) Solve() (S, error) {
	var zero S
	if !bt.solvable {
		return zero, errors.New(errors.ErrCodeOperationUnavailable,
			"bucket tree built without solve support")
	}
	s := bt.sops.InitSolution(bt.x0)
	for _, root := range bt.dec.Roots() {
		for _, id := range bt.preorder(root) {
			bt.solvers[id].Solve(s)
		}
	}
	return s, nil
}

// NodeTables returns the retained bucket tables. Fails with
// OPERATION_UNAVAILABLE when the tree was built without retention.
func (bt *BucketTree[Y, S]) NodeTables() ([]NodeTables[Y], error) {
	if !bt.keep {
		return nil, errors.New(errors.ErrCodeOperationUnavailable,
			"bucket tree built without node-table retention")
	}
	out := make([]NodeTables[Y], 0, bt.dec.Size())
	for id := 0; id < bt.dec.Size(); id++ {
		n := bt.dec.Node(id)
		out = append(out, NodeTables[Y]{
			NodeVar: n.Var,
			SepVars: n.SepVars,
			Tables:  bt.nodeTabs[id],
		})
	}
	return out, nil
}

// postorder returns the node ids of root's subtree, children before
// parents, using an explicit stack so deep trees cannot overflow.
func (bt *BucketTree[Y, S]) postorder(root int) []int {
	order := make([]int, 0, bt.dec.Size())
	stack := []int{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)
		stack = append(stack, bt.dec.Node(id).Children...)
	}
	// Reversing the parent-first expansion yields a valid postorder.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// preorder returns the node ids of root's subtree, parents before children.
func (bt *BucketTree[Y, S]) preorder(root int) []int {
	order := make([]int, 0, bt.dec.Size())
	stack := []int{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)
		children := bt.dec.Node(id).Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

func anyHasVar[Y any](tabs []*table.Table[Y], v int) bool {
	for _, t := range tabs {
		if t.HasVar(v) {
			return true
		}
	}
	return false
}

func fillIdentity[Y any](t *table.Table[Y], o ops.Ops[Y]) {
	id := o.CombineIdentity()
	vals := t.Values()
	for i := range vals {
		vals[i] = id
	}
}
