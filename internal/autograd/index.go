package autograd

import "fmt"

// Index reads the sub-region [starts[i], stops[i]) along each axis into a
// new node. Fewer ranges than dimensions leaves the trailing dimensions
// whole. The gradient scatter-adds into the matching region of the source,
// so overlapping reads of the same region accumulate.
func (t *Tensor) Index(starts, stops []int) (*Tensor, error) {
	shape := t.raw.Shape()
	ndim := len(shape)

	if len(starts) != len(stops) {
		return nil, fmt.Errorf("index: %w: %d starts vs %d stops", ErrInvalidArgument, len(starts), len(stops))
	}
	if len(starts) > ndim {
		return nil, fmt.Errorf("index: %w: %d ranges for %dD tensor", ErrInvalidArgument, len(starts), ndim)
	}

	fullStarts := make([]int, ndim)
	fullStops := append([]int(nil), shape...)
	copy(fullStarts, starts)
	copy(fullStops, stops)

	for d := 0; d < ndim; d++ {
		if fullStarts[d] < 0 || fullStops[d] > shape[d] || fullStarts[d] >= fullStops[d] {
			return nil, fmt.Errorf("index: %w: range [%d, %d) invalid for dimension %d of size %d",
				ErrInvalidArgument, fullStarts[d], fullStops[d], d, shape[d])
		}
	}

	raw := t.backend.Slice(t.raw, fullStarts, fullStops)
	op := &opRecord{kind: opIndex, starts: fullStarts, stops: fullStops}
	return t.ctx.newResult(raw, t.backend, op, t), nil
}

func (n *Tensor) backwardIndex() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	b := n.backend

	ag := a.gradValue()
	region := b.Slice(ag, n.op.starts, n.op.stops)
	b.SliceSet(ag, b.Add(region, n.gradValue()), n.op.starts)
}

// SetSlice writes src's values into t at the given start offsets, mutating
// t in place without recording an operation. When both tensors carry
// gradients the same region of the gradient is overwritten too, keeping
// value and gradient views consistent.
func (t *Tensor) SetSlice(starts []int, src *Tensor) error {
	if t.raw.Device() != src.raw.Device() {
		return fmt.Errorf("set_slice: %w: %s vs %s", ErrBackendMismatch, t.raw.Device(), src.raw.Device())
	}
	sShape := src.raw.Shape()
	shape := t.raw.Shape()
	ndim := len(shape)
	if len(sShape) != ndim || len(starts) != ndim {
		return fmt.Errorf("set_slice: %w: rank mismatch: dst %dD, src %dD, %d offsets",
			ErrInvalidArgument, ndim, len(sShape), len(starts))
	}
	for d := 0; d < ndim; d++ {
		if starts[d] < 0 || starts[d]+sShape[d] > shape[d] {
			return fmt.Errorf("set_slice: %w: region start %d size %d exceeds dimension %d of size %d",
				ErrInvalidArgument, starts[d], sShape[d], d, shape[d])
		}
	}

	t.backend.SliceSet(t.raw, src.raw, starts)
	if t.grad != nil && src.grad != nil {
		t.backend.SliceSet(t.grad, src.grad, starts)
	}
	return nil
}
