package nn

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
)

// ReLU zeroes negative elements. The masked positions block the gradient.
type ReLU struct{}

// Forward applies max(x, 0).
func (ReLU) Forward(x *autograd.Tensor) *autograd.Tensor {
	mask := x.Backend().LessScalar(x.Raw(), 0)
	out, err := x.MaskedFill(mask, 0)
	if err != nil {
		panic(err)
	}
	return out
}

// Parameters returns nil: ReLU is stateless.
func (ReLU) Parameters() []*autograd.Tensor { return nil }

// Sigmoid applies 1 / (1 + e^-x), composed from differentiable primitives.
type Sigmoid struct{}

// Forward applies the logistic function.
func (Sigmoid) Forward(x *autograd.Tensor) *autograd.Tensor {
	return x.Neg().Exp().AddScalar(1).Pow(-1)
}

// Parameters returns nil: Sigmoid is stateless.
func (Sigmoid) Parameters() []*autograd.Tensor { return nil }

// Tanh applies the hyperbolic tangent via 2*sigmoid(2x) - 1.
type Tanh struct{}

// Forward applies tanh element-wise.
func (Tanh) Forward(x *autograd.Tensor) *autograd.Tensor {
	return Sigmoid{}.Forward(x.MulScalar(2)).MulScalar(2).SubScalar(1)
}

// Parameters returns nil: Tanh is stateless.
func (Tanh) Parameters() []*autograd.Tensor { return nil }
