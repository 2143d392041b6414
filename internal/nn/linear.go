package nn

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ W^T + b.
//
// The weight has shape [outFeatures, inFeatures] and is Xavier-initialized;
// the bias has shape [outFeatures] and starts at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *autograd.Tensor
	bias        *autograd.Tensor
}

// NewLinear creates a linear layer with trainable weight and bias.
func NewLinear(ctx *autograd.Context, b tensor.Backend, inFeatures, outFeatures int) *Linear {
	w := xavierUniform(tensor.Shape{outFeatures, inFeatures}, inFeatures, outFeatures, b.Device())
	bias := tensor.Zeros(tensor.Shape{outFeatures}, tensor.Float32, b.Device())

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      ctx.NewParameter(w, b),
		bias:        ctx.NewParameter(bias, b),
	}
}

// Forward computes y = x @ W^T + b. The input's trailing dimension must be
// inFeatures; leading dimensions are preserved.
func (l *Linear) Forward(x *autograd.Tensor) *autograd.Tensor {
	shape := x.Shape()
	if shape[len(shape)-1] != l.inFeatures {
		panic(fmt.Sprintf("linear: input feature dimension %d, want %d", shape[len(shape)-1], l.inFeatures))
	}
	return x.MatMul(l.weight.Transpose()).Add(l.bias)
}

// Parameters returns the weight and bias.
func (l *Linear) Parameters() []*autograd.Tensor {
	return []*autograd.Tensor{l.weight, l.bias}
}

// Weight returns the weight tensor.
func (l *Linear) Weight() *autograd.Tensor { return l.weight }

// Bias returns the bias tensor.
func (l *Linear) Bias() *autograd.Tensor { return l.bias }
