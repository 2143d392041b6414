package optim

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2015): per-parameter
// learning rates from bias-corrected first and second moment estimates.
type Adam struct {
	params []*autograd.Tensor
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	step   int

	m map[*autograd.Tensor]*tensor.RawTensor
	v map[*autograd.Tensor]*tensor.RawTensor
}

// AdamConfig configures the optimizer. Zero values take the usual defaults:
// LR 0.001, Beta1 0.9, Beta2 0.999, Eps 1e-8.
type AdamConfig struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*autograd.Tensor, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Beta1,
		beta2:  config.Beta2,
		eps:    config.Eps,
		m:      make(map[*autograd.Tensor]*tensor.RawTensor),
		v:      make(map[*autograd.Tensor]*tensor.RawTensor),
	}
}

// Step applies one Adam update to every parameter with a gradient.
func (a *Adam) Step() {
	a.step++
	bc1 := 1 - math.Pow(a.beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.beta2, float64(a.step))

	for _, p := range a.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		b := p.Backend()

		m, ok := a.m[p]
		if !ok {
			m = tensor.ZerosLike(grad)
		}
		v, ok := a.v[p]
		if !ok {
			v = tensor.ZerosLike(grad)
		}

		m = b.Add(b.MulScalar(m, a.beta1), b.MulScalar(grad, 1-a.beta1))
		v = b.Add(b.MulScalar(v, a.beta2), b.MulScalar(b.Mul(grad, grad), 1-a.beta2))
		a.m[p] = m
		a.v[p] = v

		mHat := b.DivScalar(m, bc1)
		vHat := b.DivScalar(v, bc2)

		update := b.Div(mHat, b.AddScalar(b.Sqrt(vHat), a.eps))
		writeInPlace(p.Raw(), b.Sub(p.Raw(), b.MulScalar(update, a.lr)))
	}
}

// ZeroGrad clears all parameter gradients.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}
