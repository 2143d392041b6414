// Package autograd implements reverse-mode automatic differentiation over
// N-dimensional tensors.
//
// A Tensor is a node in a dynamically built computation graph: it holds a
// value, an optional gradient, links to the operand nodes that produced it,
// and a tagged record of the producing operation. Calling Backward on a node
// orders its ancestry topologically and runs each operation's gradient rule
// in reverse, accumulating gradients at every node that requires them.
//
// Usage:
//
//	ctx := autograd.NewContext()
//	b := cpu.New()
//	x := ctx.MustFromFloat32([]float32{2, 3}, tensor.Shape{2}, b).RequireGrad()
//	y := x.Mul(x).Sum(nil, false)
//	if err := y.Backward(); err != nil { ... }
//	fmt.Println(x.Grad().AsFloat32()) // [4 6]
package autograd

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Tensor is a node in the computation graph.
type Tensor struct {
	raw     *tensor.RawTensor
	backend tensor.Backend
	ctx     *Context

	requiresGrad bool
	grad         *tensor.RawTensor

	// parents are the distinct operand nodes that require grad; they define
	// the traversal order for Backward. op holds all operands plus the
	// parameters of the producing operation. Both are nil on leaves and on
	// results computed with tracking disabled.
	parents []*Tensor
	op      *opRecord
}

// NewTensor wraps a RawTensor as a leaf node that does not require grad.
func (c *Context) NewTensor(raw *tensor.RawTensor, b tensor.Backend) *Tensor {
	return &Tensor{raw: raw, backend: b, ctx: c}
}

// NewParameter wraps a RawTensor as a trainable leaf. The tensor requires
// grad regardless of the current tracking state; tracking only governs
// whether operations record graph edges.
func (c *Context) NewParameter(raw *tensor.RawTensor, b tensor.Backend) *Tensor {
	return &Tensor{raw: raw, backend: b, ctx: c, requiresGrad: true}
}

// FromFloat32 builds a Float32 leaf tensor from a data slice.
func (c *Context) FromFloat32(data []float32, shape tensor.Shape, b tensor.Backend) (*Tensor, error) {
	raw, err := tensor.FromFloat32(data, shape, b.Device())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return c.NewTensor(raw, b), nil
}

// FromFloat64 builds a Float64 leaf tensor from a data slice.
func (c *Context) FromFloat64(data []float64, shape tensor.Shape, b tensor.Backend) (*Tensor, error) {
	raw, err := tensor.FromFloat64(data, shape, b.Device())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return c.NewTensor(raw, b), nil
}

// MustFromFloat32 is FromFloat32 that panics on error. Convenient in tests
// and examples with literal data.
func (c *Context) MustFromFloat32(data []float32, shape tensor.Shape, b tensor.Backend) *Tensor {
	t, err := c.FromFloat32(data, shape, b)
	if err != nil {
		panic(err)
	}
	return t
}

// MustFromFloat64 is FromFloat64 that panics on error.
func (c *Context) MustFromFloat64(data []float64, shape tensor.Shape, b tensor.Backend) *Tensor {
	t, err := c.FromFloat64(data, shape, b)
	if err != nil {
		panic(err)
	}
	return t
}

// Raw returns the tensor's value buffer.
func (t *Tensor) Raw() *tensor.RawTensor {
	return t.raw
}

// Grad returns the accumulated gradient, or nil if none has been computed.
func (t *Tensor) Grad() *tensor.RawTensor {
	return t.grad
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() tensor.Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor) DType() tensor.DataType {
	return t.raw.DType()
}

// Device returns the device the tensor lives on.
func (t *Tensor) Device() tensor.Device {
	return t.raw.Device()
}

// Backend returns the backend that executes this tensor's operations.
func (t *Tensor) Backend() tensor.Backend {
	return t.backend
}

// Context returns the tracking context the tensor was created under.
func (t *Tensor) Context() *Context {
	return t.ctx
}

// RequiresGrad reports whether Backward accumulates a gradient here.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// RequireGrad marks the tensor as requiring grad and returns it. The mark
// sticks even inside a NoGrad scope: tracking controls edge recording, not
// which leaves are trainable. Grad buffers still allocate lazily.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// SetRequiresGrad sets the requires-grad flag directly.
func (t *Tensor) SetRequiresGrad(v bool) {
	t.requiresGrad = v
}

// ZeroGrad drops the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// Detach returns a leaf tensor sharing this tensor's value but carrying no
// graph history and no grad requirement.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{raw: t.raw, backend: t.backend, ctx: t.ctx}
}

// Item returns the value of a single-element float tensor as float64.
func (t *Tensor) Item() float64 {
	if t.raw.NumElements() != 1 {
		panic(fmt.Sprintf("item: tensor has %d elements, want 1", t.raw.NumElements()))
	}
	switch t.raw.DType() {
	case tensor.Float32:
		return float64(t.raw.AsFloat32()[0])
	case tensor.Float64:
		return t.raw.AsFloat64()[0]
	case tensor.Float16:
		return float64(tensor.Float16ToFloat32(t.raw.AsFloat16()[0]))
	default:
		panic(fmt.Sprintf("item: unsupported dtype %s", t.raw.DType()))
	}
}

// Clip bounds the tensor's values to [min, max] in place and returns the
// tensor. The graph is untouched: clipping adjusts stored values, it is not
// a differentiated operation.
func (t *Tensor) Clip(min, max float64) *Tensor {
	t.backend.Clip(t.raw, min, max)
	return t
}

// ClipGrad bounds the accumulated gradient to [min, max] in place. No-op if
// no gradient has been computed.
func (t *Tensor) ClipGrad(min, max float64) *Tensor {
	if t.grad != nil {
		t.backend.Clip(t.grad, min, max)
	}
	return t
}

// newResult wraps an operation result. With tracking enabled and at least
// one operand requiring grad, the node records the op and links the distinct
// grad-requiring operands as parents; otherwise it is a plain value node.
func (c *Context) newResult(raw *tensor.RawTensor, b tensor.Backend, op *opRecord, srcs ...*Tensor) *Tensor {
	out := &Tensor{raw: raw, backend: b, ctx: c}
	if !c.enabled {
		return out
	}

	var parents []*Tensor
	for _, s := range srcs {
		if s.requiresGrad && !containsNode(parents, s) {
			parents = append(parents, s)
		}
	}
	if len(parents) == 0 {
		return out
	}

	op.srcs = srcs
	out.requiresGrad = true
	out.parents = parents
	out.op = op
	return out
}

func containsNode(nodes []*Tensor, n *Tensor) bool {
	for _, p := range nodes {
		if p == n {
			return true
		}
	}
	return false
}

// mustSameDevice panics when two operands live on different devices.
// Operations with an error return use checkSameDevice instead.
func (t *Tensor) mustSameDevice(op string, o *Tensor) {
	if t.raw.Device() != o.raw.Device() {
		panic(fmt.Sprintf("%s: operands on different devices: %s vs %s",
			op, t.raw.Device(), o.raw.Device()))
	}
}
