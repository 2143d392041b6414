package optim

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum:  param -= lr * grad
// With momentum:     v = momentum*v + grad;  param -= lr * v
type SGD struct {
	params     []*autograd.Tensor
	lr         float64
	momentum   float64
	velocities map[*autograd.Tensor]*tensor.RawTensor
}

// SGDConfig configures the optimizer. A zero LR defaults to 0.01.
type SGDConfig struct {
	LR       float64
	Momentum float64
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD(params []*autograd.Tensor, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*autograd.Tensor]*tensor.RawTensor),
	}
}

// Step applies one descent update to every parameter with a gradient.
func (s *SGD) Step() {
	for _, p := range s.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		b := p.Backend()

		update := grad
		if s.momentum != 0 {
			v, ok := s.velocities[p]
			if !ok {
				v = tensor.ZerosLike(grad)
			}
			v = b.Add(b.MulScalar(v, s.momentum), grad)
			s.velocities[p] = v
			update = v
		}

		writeInPlace(p.Raw(), b.Sub(p.Raw(), b.MulScalar(update, s.lr)))
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}
