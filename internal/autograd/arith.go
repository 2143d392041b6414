package autograd

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Add returns t + o with NumPy-style broadcasting.
func (t *Tensor) Add(o *Tensor) *Tensor {
	t.mustSameDevice("add", o)
	raw := t.backend.Add(t.raw, o.raw)

	op := &opRecord{kind: opAdd}
	op.lAxes, op.rAxes = tensor.BroadcastAxes(t.raw.Shape(), o.raw.Shape())
	return t.ctx.newResult(raw, t.backend, op, t, o)
}

// AddScalar returns t + s.
func (t *Tensor) AddScalar(s float64) *Tensor {
	raw := t.backend.AddScalar(t.raw, s)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opAddScalar, scalar: s}, t)
}

// Mul returns t * o element-wise with broadcasting.
func (t *Tensor) Mul(o *Tensor) *Tensor {
	t.mustSameDevice("mul", o)
	raw := t.backend.Mul(t.raw, o.raw)

	op := &opRecord{kind: opMul}
	op.lAxes, op.rAxes = tensor.BroadcastAxes(t.raw.Shape(), o.raw.Shape())
	return t.ctx.newResult(raw, t.backend, op, t, o)
}

// MulScalar returns t * s.
func (t *Tensor) MulScalar(s float64) *Tensor {
	raw := t.backend.MulScalar(t.raw, s)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opMulScalar, scalar: s}, t)
}

// Neg returns -t.
func (t *Tensor) Neg() *Tensor {
	return t.MulScalar(-1)
}

// Sub returns t - o, composed as t + (-o) so it needs no gradient rule of
// its own.
func (t *Tensor) Sub(o *Tensor) *Tensor {
	return t.Add(o.Neg())
}

// SubScalar returns t - s.
func (t *Tensor) SubScalar(s float64) *Tensor {
	return t.AddScalar(-s)
}

// ScalarSub returns s - t.
func (t *Tensor) ScalarSub(s float64) *Tensor {
	return t.Neg().AddScalar(s)
}

// Div returns t / o, composed as t * o^-1.
func (t *Tensor) Div(o *Tensor) *Tensor {
	return t.Mul(o.Pow(-1))
}

// DivScalar returns t / s.
func (t *Tensor) DivScalar(s float64) *Tensor {
	return t.MulScalar(1 / s)
}

// ScalarDiv returns s / t.
func (t *Tensor) ScalarDiv(s float64) *Tensor {
	return t.Pow(-1).MulScalar(s)
}

// Pow raises each element to the power p. Negative exponents are computed as
// the reciprocal raised to |p|.
func (t *Tensor) Pow(p float64) *Tensor {
	raw := t.backend.PowScalar(t.raw, p)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opPow, scalar: p}, t)
}

// Exp returns e^t element-wise.
func (t *Tensor) Exp() *Tensor {
	raw := t.backend.Exp(t.raw)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opExp}, t)
}

// Log returns the natural logarithm element-wise.
func (t *Tensor) Log() *Tensor {
	raw := t.backend.Log(t.raw)
	return t.ctx.newResult(raw, t.backend, &opRecord{kind: opLog}, t)
}

// Sqrt returns the element-wise square root, composed as t^0.5.
func (t *Tensor) Sqrt() *Tensor {
	return t.Pow(0.5)
}

// d(a+b) = g for both operands, reduced over the axes each was stretched
// along when broadcasting.
func (n *Tensor) backwardAdd() {
	g := n.gradValue()
	b := n.backend
	a, o := n.op.srcs[0], n.op.srcs[1]

	if a.requiresGrad {
		a.accumulate(reduceGrad(b, g, n.op.lAxes, a.raw.Shape()))
	}
	if o.requiresGrad {
		o.accumulate(reduceGrad(b, g, n.op.rAxes, o.raw.Shape()))
	}
}

func (n *Tensor) backwardAddScalar() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.gradValue())
	}
}

// d(a*b)/da = g * b, reduced over the broadcast axes; symmetrically for b.
func (n *Tensor) backwardMul() {
	g := n.gradValue()
	b := n.backend
	a, o := n.op.srcs[0], n.op.srcs[1]

	if a.requiresGrad {
		a.accumulate(reduceGrad(b, b.Mul(g, o.raw), n.op.lAxes, a.raw.Shape()))
	}
	if o.requiresGrad {
		o.accumulate(reduceGrad(b, b.Mul(g, a.raw), n.op.rAxes, o.raw.Shape()))
	}
}

func (n *Tensor) backwardMulScalar() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.backend.MulScalar(n.gradValue(), n.op.scalar))
	}
}

// d(x^p) = p * x^(p-1) * g.
func (n *Tensor) backwardPow() {
	a := n.op.srcs[0]
	if !a.requiresGrad {
		return
	}
	b := n.backend
	p := n.op.scalar
	local := b.MulScalar(b.PowScalar(a.raw, p-1), p)
	a.accumulate(b.Mul(local, n.gradValue()))
}

// d(e^x) = e^x * g; the forward value is the local derivative.
func (n *Tensor) backwardExp() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.backend.Mul(n.raw, n.gradValue()))
	}
}

// d(ln x) = g / x.
func (n *Tensor) backwardLog() {
	a := n.op.srcs[0]
	if a.requiresGrad {
		a.accumulate(n.backend.Div(n.gradValue(), a.raw))
	}
}
