package nn

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Dropout randomly zeroes elements with probability p during training and
// scales the survivors by 1/(1-p), so activations keep their expectation.
// In eval mode it is the identity.
type Dropout struct {
	p        float64
	training bool
}

// NewDropout creates a dropout layer. p must be in [0, 1).
func NewDropout(p float64) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability %v outside [0, 1)", p))
	}
	return &Dropout{p: p, training: true}
}

// Train puts the layer in training mode.
func (d *Dropout) Train() { d.training = true }

// Eval puts the layer in inference mode.
func (d *Dropout) Eval() { d.training = false }

// Forward applies the dropout mask, freshly sampled per call.
func (d *Dropout) Forward(x *autograd.Tensor) *autograd.Tensor {
	if !d.training || d.p == 0 {
		return x
	}

	noise := tensor.Rand(x.Shape(), tensor.Float32, x.Device())
	mask := x.Backend().LessScalar(noise, d.p)
	out, err := x.MaskedFill(mask, 0)
	if err != nil {
		panic(err)
	}
	return out.MulScalar(1 / (1 - d.p))
}

// Parameters returns nil: the mask is not trainable.
func (d *Dropout) Parameters() []*autograd.Tensor { return nil }
