package nn

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// LayerNorm normalizes the trailing dimension to zero mean and unit
// variance, then applies a learned affine transform:
//
//	y = (x - mean) / sqrt(var + eps) * gamma + beta
type LayerNorm struct {
	dim   int
	eps   float64
	gamma *autograd.Tensor
	beta  *autograd.Tensor
}

// NewLayerNorm creates a layer norm over a trailing dimension of size dim.
func NewLayerNorm(ctx *autograd.Context, b tensor.Backend, dim int, eps float64) *LayerNorm {
	return &LayerNorm{
		dim:   dim,
		eps:   eps,
		gamma: ctx.NewParameter(tensor.Ones(tensor.Shape{dim}, tensor.Float32, b.Device()), b),
		beta:  ctx.NewParameter(tensor.Zeros(tensor.Shape{dim}, tensor.Float32, b.Device()), b),
	}
}

// Forward normalizes x over its last dimension.
func (ln *LayerNorm) Forward(x *autograd.Tensor) *autograd.Tensor {
	axes := []int{-1}
	mean := x.Mean(axes, true)
	// Population variance; correction 0 cannot fail on a non-empty axis.
	variance, err := x.Var(axes, true, 0)
	if err != nil {
		panic(err)
	}

	norm := x.Sub(mean).Div(variance.AddScalar(ln.eps).Sqrt())
	return norm.Mul(ln.gamma).Add(ln.beta)
}

// Parameters returns gamma and beta.
func (ln *LayerNorm) Parameters() []*autograd.Tensor {
	return []*autograd.Tensor{ln.gamma, ln.beta}
}
