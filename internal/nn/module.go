// Package nn implements neural network building blocks on top of the
// autograd graph: layers, activations, and loss functions whose parameters
// are tracked tensors.
//
// Design follows PyTorch's nn.Module, reduced to what a Go API needs:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(ctx, backend, 784, 128),
//	    nn.ReLU{},
//	    nn.NewLinear(ctx, backend, 128, 10),
//	)
package nn

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
)

// Module is the base interface for all network components.
type Module interface {
	// Forward computes the module's output for the given input.
	Forward(x *autograd.Tensor) *autograd.Tensor

	// Parameters returns the module's trainable tensors, including those
	// of nested modules. Parameter-free modules return nil.
	Parameters() []*autograd.Tensor
}

// Sequential chains modules, feeding each output into the next.
type Sequential struct {
	modules []Module
}

// NewSequential builds a sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential) Forward(x *autograd.Tensor) *autograd.Tensor {
	for _, m := range s.modules {
		x = m.Forward(x)
	}
	return x
}

// Parameters collects the parameters of every contained module.
func (s *Sequential) Parameters() []*autograd.Tensor {
	var params []*autograd.Tensor
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}
