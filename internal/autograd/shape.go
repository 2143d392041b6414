package autograd

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Reshape returns a node viewing the same data under a new shape. The
// element count must match.
func (t *Tensor) Reshape(shape tensor.Shape) *Tensor {
	raw := t.backend.Reshape(t.raw, shape)
	op := &opRecord{kind: opReshape, inShape: t.raw.Shape().Clone()}
	return t.ctx.newResult(raw, t.backend, op, t)
}

func (n *Tensor) backwardReshape() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.backend.Reshape(n.gradValue(), n.op.inShape))
	}
}

// Transpose permutes the dimensions. With no axes given, all dimensions are
// reversed.
func (t *Tensor) Transpose(axes ...int) *Tensor {
	ndim := len(t.raw.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	raw := t.backend.Transpose(t.raw, axes...)
	op := &opRecord{kind: opTranspose, axes: append([]int(nil), axes...)}
	return t.ctx.newResult(raw, t.backend, op, t)
}

// The gradient of a permutation is the inverse permutation.
func (n *Tensor) backwardTranspose() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	inv := make([]int, len(n.op.axes))
	for i, ax := range n.op.axes {
		inv[ax] = i
	}
	a.accumulate(n.backend.Transpose(n.gradValue(), inv...))
}

// Cat concatenates t with others along dim. All tensors must live on the
// same backend; a mismatch returns ErrBackendMismatch. The result is
// tracked if any operand requires grad.
func (t *Tensor) Cat(others []*Tensor, dim int) (*Tensor, error) {
	srcs := append([]*Tensor{t}, others...)
	raws := make([]*tensor.RawTensor, len(srcs))
	for i, s := range srcs {
		if s.raw.Device() != t.raw.Device() {
			return nil, fmt.Errorf("cat: %w: %s vs %s", ErrBackendMismatch, t.raw.Device(), s.raw.Device())
		}
		raws[i] = s.raw
	}

	ndim := len(t.raw.Shape())
	norm := dim
	if norm < 0 {
		norm += ndim
	}
	if norm < 0 || norm >= ndim {
		return nil, fmt.Errorf("cat: %w: dimension %d out of range for %dD tensor", ErrInvalidArgument, dim, ndim)
	}

	raw := t.backend.Cat(raws, norm)
	op := &opRecord{kind: opCat, axes: []int{norm}}
	return t.ctx.newResult(raw, t.backend, op, srcs...), nil
}

// Each operand owns a block of the result along the concat dimension; its
// gradient is that block sliced back out.
func (n *Tensor) backwardCat() {
	b := n.backend
	g := n.gradValue()
	dim := n.op.axes[0]
	outShape := n.raw.Shape()

	offset := 0
	for _, src := range n.op.srcs {
		size := src.raw.Shape()[dim]
		if src.requiresGrad {
			starts := make([]int, len(outShape))
			stops := append([]int(nil), outShape...)
			starts[dim] = offset
			stops[dim] = offset + size
			src.accumulate(b.Slice(g, starts, stops))
		}
		offset += size
	}
}

// Split divides t into n equal parts along dim. The dimension size must be
// divisible by n; otherwise ErrInvalidArgument is returned.
func (t *Tensor) Split(n, dim int) ([]*Tensor, error) {
	shape := t.raw.Shape()
	ndim := len(shape)

	norm := dim
	if norm < 0 {
		norm += ndim
	}
	if norm < 0 || norm >= ndim {
		return nil, fmt.Errorf("split: %w: dimension %d out of range for %dD tensor", ErrInvalidArgument, dim, ndim)
	}
	if n <= 0 || shape[norm]%n != 0 {
		return nil, fmt.Errorf("split: %w: dimension %d size %d not divisible into %d parts",
			ErrInvalidArgument, norm, shape[norm], n)
	}

	parts := t.backend.Split(t.raw, n, norm)
	partSize := shape[norm] / n

	out := make([]*Tensor, n)
	for i, part := range parts {
		starts := make([]int, ndim)
		stops := append([]int(nil), shape...)
		starts[norm] = i * partSize
		stops[norm] = (i + 1) * partSize
		op := &opRecord{kind: opSplit, starts: starts, stops: stops}
		out[i] = t.ctx.newResult(part, t.backend, op, t)
	}
	return out, nil
}

// A split part's gradient scatter-adds into its region of the source
// gradient; untouched regions stay zero.
func (n *Tensor) backwardSplit() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	b := n.backend

	ag := a.gradValue()
	region := b.Slice(ag, n.op.starts, n.op.stops)
	b.SliceSet(ag, b.Add(region, n.gradValue()), n.op.starts)
}

// MaskedFill replaces elements where mask is true with value. The mask must
// be a Bool tensor broadcastable to t's shape; filled positions block the
// gradient, untouched positions pass it through.
func (t *Tensor) MaskedFill(mask *tensor.RawTensor, value float64) (*Tensor, error) {
	if mask.DType() != tensor.Bool {
		return nil, fmt.Errorf("masked_fill: %w: mask dtype is %s, want bool", ErrInvalidArgument, mask.DType())
	}
	if mask.Device() != t.raw.Device() {
		return nil, fmt.Errorf("masked_fill: %w: mask on %s, tensor on %s",
			ErrBackendMismatch, mask.Device(), t.raw.Device())
	}
	if _, _, err := tensor.BroadcastShapes(mask.Shape(), t.raw.Shape()); err != nil {
		return nil, fmt.Errorf("masked_fill: %w: %v", ErrInvalidArgument, err)
	}

	fill := tensor.Full(tensor.Shape{1}, value, t.raw.DType(), t.raw.Device())
	raw := t.backend.Where(mask, fill, t.raw)

	// A mask wider than t broadcasts t into the result; the gradient must
	// be summed back over those axes.
	op := &opRecord{kind: opMaskedFill, mask: mask, scalar: value}
	op.lAxes, _ = tensor.BroadcastAxes(t.raw.Shape(), mask.Shape())
	return t.ctx.newResult(raw, t.backend, op, t), nil
}

func (n *Tensor) backwardMaskedFill() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	b := n.backend

	zero := tensor.Zeros(tensor.Shape{1}, n.raw.DType(), n.raw.Device())
	contrib := b.Where(n.op.mask, zero, n.gradValue())
	a.accumulate(reduceGrad(b, contrib, n.op.lAxes, a.raw.Shape()))
}

// Half casts a Float32 tensor to Float16. Any other source dtype returns
// ErrInvalidArgument. The gradient is cast back to Float32 on the way down.
func (t *Tensor) Half() (*Tensor, error) {
	if t.raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("half: %w: dtype is %s, want float32", ErrInvalidArgument, t.raw.DType())
	}

	raw := t.backend.Cast(t.raw, tensor.Float16)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opHalf}, t), nil
}

func (n *Tensor) backwardHalf() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.backend.Cast(n.gradValue(), tensor.Float32))
	}
}
