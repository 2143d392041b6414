package autograd

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Backward runs reverse-mode differentiation from t.
//
// The ancestry of t is ordered by a depth-first topological sort over the
// parent links; a node found on the current descent stack means the links
// form a cycle and no valid order exists. The root gradient is seeded with
// ones, then every recorded operation runs its gradient rule in reverse
// order, adding its contribution into each operand's gradient. Upstream
// gradients accumulate across calls; the root's own gradient is reset to
// ones on every call. Use ZeroGrad between steps.
func (t *Tensor) Backward() error {
	if !t.ctx.enabled {
		return fmt.Errorf("backward: %w", ErrGradDisabled)
	}
	if !t.requiresGrad {
		return fmt.Errorf("backward: %w: tensor does not require grad", ErrInvalidArgument)
	}

	order, err := topoSort(t)
	if err != nil {
		return err
	}

	// The seed replaces any previous root gradient so repeated calls start
	// from dL/dL = 1, not a growing sum.
	t.grad = tensor.OnesLike(t.raw)

	// Gradient rules must not extend the graph they are unwinding.
	t.ctx.NoGrad(func() {
		for i := len(order) - 1; i >= 0; i-- {
			n := order[i]
			if n.op != nil {
				n.applyBackward()
			}
		}
	})

	return nil
}

// topoSort returns the ancestry of root in dependency order: every node
// appears after all of its parents.
func topoSort(root *Tensor) ([]*Tensor, error) {
	var order []*Tensor
	visited := make(map[*Tensor]bool)
	inStack := make(map[*Tensor]bool)

	var visit func(n *Tensor) error
	visit = func(n *Tensor) error {
		if inStack[n] {
			return fmt.Errorf("backward: %w", ErrGraphCycle)
		}
		if visited[n] {
			return nil
		}
		visited[n] = true
		inStack[n] = true
		for _, p := range n.parents {
			if err := visit(p); err != nil {
				return err
			}
		}
		delete(inStack, n)
		order = append(order, n)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

// applyBackward dispatches on the op tag and runs the gradient rule for the
// operation that produced n, adding contributions into its operands.
func (n *Tensor) applyBackward() {
	switch n.op.kind {
	case opAdd:
		n.backwardAdd()
	case opAddScalar:
		n.backwardAddScalar()
	case opMul:
		n.backwardMul()
	case opMulScalar:
		n.backwardMulScalar()
	case opPow:
		n.backwardPow()
	case opExp:
		n.backwardExp()
	case opLog:
		n.backwardLog()
	case opMatMul:
		n.backwardMatMul()
	case opSum:
		n.backwardSum()
	case opReshape:
		n.backwardReshape()
	case opTranspose:
		n.backwardTranspose()
	case opCat:
		n.backwardCat()
	case opSplit:
		n.backwardSplit()
	case opMaskedFill:
		n.backwardMaskedFill()
	case opHalf:
		n.backwardHalf()
	case opIndex:
		n.backwardIndex()
	default:
		panic(fmt.Sprintf("backward: unhandled op %s", n.op.kind))
	}
}

// gradValue returns the gradient flowing into n, materializing zeros if no
// consumer has contributed yet.
func (n *Tensor) gradValue() *tensor.RawTensor {
	if n.grad == nil {
		n.grad = tensor.ZerosLike(n.raw)
	}
	return n.grad
}

// accumulate adds contrib into the tensor's gradient. Contributions from
// every consumer sum; the previous gradient buffer is never mutated, so a
// caller may hold references to earlier values.
func (t *Tensor) accumulate(contrib *tensor.RawTensor) {
	if t.grad == nil {
		t.grad = tensor.ZerosLike(t.raw)
	}
	t.grad = t.backend.Add(t.grad, contrib)
}

// reduceGrad sums g over the given broadcast axes and reshapes the result to
// the operand's shape. Axes were recorded with the result's indexing, so
// summing with keepDim leaves them addressable in order.
func reduceGrad(b tensor.Backend, g *tensor.RawTensor, axes []int, shape tensor.Shape) *tensor.RawTensor {
	r := g
	for _, ax := range axes {
		r = b.SumDim(r, ax, true)
	}
	if !r.Shape().Equal(shape) {
		r = b.Reshape(r, shape)
	}
	return r
}
