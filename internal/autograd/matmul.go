package autograd

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MatMul returns the matrix product of t and o over their trailing two
// dimensions, with NumPy-style semantics:
//
//   - 1-D operands are promoted: the left to (1, K), the right to (K, 1),
//     and the synthetic axes are dropped from the result.
//   - Leading batch dimensions broadcast against each other.
//
// (3, 4) @ (4,) gives (3,); (2, 1, 3, 4) @ (5, 4, 2) gives (2, 5, 3, 2).
func (t *Tensor) MatMul(o *Tensor) *Tensor {
	t.mustSameDevice("matmul", o)
	b := t.backend

	aShape := t.raw.Shape()
	bShape := o.raw.Shape()
	if len(aShape) == 0 || len(bShape) == 0 {
		panic("matmul: scalar operands are not supported")
	}

	op := &opRecord{kind: opMatMul}

	ar := t.raw
	if len(aShape) == 1 {
		ar = b.Reshape(ar, tensor.Shape{1, aShape[0]})
		op.lPromoted = true
	}
	br := o.raw
	if len(bShape) == 1 {
		br = b.Reshape(br, tensor.Shape{bShape[0], 1})
		op.rPromoted = true
	}

	var out *tensor.RawTensor
	if len(ar.Shape()) == 2 && len(br.Shape()) == 2 {
		op.aExp, op.bExp = ar, br
		out = b.MatMul(ar, br)
	} else {
		// Broadcast the batch dimensions, then expand both operands to the
		// common batch shape so the kernel sees equal ranks.
		arShape := ar.Shape()
		brShape := br.Shape()
		aBatch := arShape[:len(arShape)-2]
		bBatch := brShape[:len(brShape)-2]

		outBatch, _, err := tensor.BroadcastShapes(aBatch, bBatch)
		if err != nil {
			panic(fmt.Sprintf("matmul: incompatible batch dimensions: %v", err))
		}
		op.lAxes, op.rAxes = tensor.BroadcastAxes(aBatch, bBatch)

		aFull := append(outBatch.Clone(), arShape[len(arShape)-2], arShape[len(arShape)-1])
		bFull := append(outBatch.Clone(), brShape[len(brShape)-2], brShape[len(brShape)-1])
		op.aExp = b.Expand(ar, aFull)
		op.bExp = b.Expand(br, bFull)
		out = b.BatchMatMul(op.aExp, op.bExp)
	}
	op.fullShape = out.Shape()

	final := out
	if op.lPromoted || op.rPromoted {
		final = b.Reshape(out, dropPromoted(out.Shape(), op.lPromoted, op.rPromoted))
	}

	return t.ctx.newResult(final, b, op, t, o)
}

// dropPromoted removes the synthetic row axis (second to last) and column
// axis (last) that 1-D promotion introduced.
func dropPromoted(full tensor.Shape, left, right bool) tensor.Shape {
	ndim := len(full)
	out := make(tensor.Shape, 0, ndim)
	for i, d := range full {
		if left && i == ndim-2 {
			continue
		}
		if right && i == ndim-1 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Gradients follow the transpose rule over the trailing two axes:
//
//	dA = g @ B^T    dB = A^T @ g
//
// computed against the expanded operands, then summed over the broadcast
// batch axes and reshaped back to each operand's original shape. Both
// contributions accumulate, so an operand feeding several consumers (or both
// sides of one matmul) collects every path's gradient.
func (n *Tensor) backwardMatMul() {
	b := n.backend
	op := n.op
	a, o := op.srcs[0], op.srcs[1]

	// Reinstate the promoted axes so the gradient has the kernel's shape.
	g := n.gradValue()
	if !g.Shape().Equal(op.fullShape) {
		g = b.Reshape(g, op.fullShape)
	}

	ndim := len(op.fullShape)
	swap := make([]int, ndim)
	for i := range swap {
		swap[i] = i
	}
	swap[ndim-2], swap[ndim-1] = swap[ndim-1], swap[ndim-2]

	matmul := b.MatMul
	if ndim > 2 {
		matmul = b.BatchMatMul
	}

	if a.requiresGrad {
		ga := matmul(g, b.Transpose(op.bExp, swap...))
		a.accumulate(reduceGrad(b, ga, op.lAxes, a.raw.Shape()))
	}
	if o.requiresGrad {
		gb := matmul(b.Transpose(op.aExp, swap...), g)
		o.accumulate(reduceGrad(b, gb, op.rAxes, o.raw.Shape()))
	}
}
