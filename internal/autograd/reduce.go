package autograd

import (
	"fmt"
	"sort"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Sum reduces over the given axes, or over all axes when axes is nil.
// Negative axes count from the end. With keepDims the reduced dimensions
// stay with size 1; otherwise they are removed, and a full reduction yields
// a scalar.
func (t *Tensor) Sum(axes []int, keepDims bool) *Tensor {
	b := t.backend
	inShape := t.raw.Shape()
	norm := normalizeAxes(axes, len(inShape))

	// Reduce one axis at a time with keepDim so the recorded indices stay
	// valid, then drop the kept axes in a single reshape.
	r := t.raw
	for _, ax := range norm {
		r = b.SumDim(r, ax, true)
	}
	if !keepDims {
		r = b.Reshape(r, dropAxes(inShape, norm))
	}

	op := &opRecord{kind: opSum, axes: norm, keepDims: keepDims, inShape: inShape.Clone()}
	return t.ctx.newResult(r, b, op, t)
}

// Mean is the sum over the given axes divided by the reduced element count.
func (t *Tensor) Mean(axes []int, keepDims bool) *Tensor {
	n := reducedCount(t.raw.Shape(), axes)
	return t.Sum(axes, keepDims).DivScalar(float64(n))
}

// Var computes the variance over the given axes with the requested degrees
// of freedom correction: sum((x - mean)^2) / (n - correction). It returns
// ErrInvalidArgument when the correction consumes every sample.
func (t *Tensor) Var(axes []int, keepDims bool, correction int) (*Tensor, error) {
	n := reducedCount(t.raw.Shape(), axes)
	if n-correction <= 0 {
		return nil, fmt.Errorf("var: %w: correction %d leaves no degrees of freedom for %d samples",
			ErrInvalidArgument, correction, n)
	}

	mean := t.Mean(axes, true)
	dev := t.Sub(mean)
	return dev.Mul(dev).Sum(axes, keepDims).DivScalar(float64(n - correction)), nil
}

// Std is the square root of Var.
func (t *Tensor) Std(axes []int, keepDims bool, correction int) (*Tensor, error) {
	v, err := t.Var(axes, keepDims, correction)
	if err != nil {
		return nil, err
	}
	return v.Sqrt(), nil
}

// The gradient of a sum distributes unchanged to every summed element:
// reinstate the reduced axes as size 1, then expand to the input shape.
func (n *Tensor) backwardSum() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	b := n.backend

	g := n.gradValue()
	if !n.op.keepDims {
		keep := n.op.inShape.Clone()
		for _, ax := range n.op.axes {
			keep[ax] = 1
		}
		g = b.Reshape(g, keep)
	}
	a.accumulate(b.Expand(g, n.op.inShape))
}

// normalizeAxes resolves negative axes and returns them ascending; nil means
// every axis.
func normalizeAxes(axes []int, ndim int) []int {
	if axes == nil {
		out := make([]int, ndim)
		for i := range out {
			out[i] = i
		}
		return out
	}

	out := make([]int, 0, len(axes))
	seen := make(map[int]bool, len(axes))
	for _, ax := range axes {
		if ax < 0 {
			ax += ndim
		}
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("reduce: axis %d out of range for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("reduce: duplicate axis %d", ax))
		}
		seen[ax] = true
		out = append(out, ax)
	}
	sort.Ints(out)
	return out
}

func dropAxes(shape tensor.Shape, axes []int) tensor.Shape {
	drop := make(map[int]bool, len(axes))
	for _, ax := range axes {
		drop[ax] = true
	}
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out
}

func reducedCount(shape tensor.Shape, axes []int) int {
	n := 1
	for _, ax := range normalizeAxes(axes, len(shape)) {
		n *= shape[ax]
	}
	return n
}
