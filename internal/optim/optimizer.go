// Package optim implements gradient-descent optimizers over autograd
// parameters. Optimizers read accumulated gradients and update parameter
// values in place; the surrounding training loop drives Backward, Step, and
// ZeroGrad.
package optim

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies one update. Parameters without a gradient are skipped.
	Step()

	// ZeroGrad clears every parameter's gradient for the next iteration.
	ZeroGrad()
}

// zeroGrads clears the gradients of all params.
func zeroGrads(params []*autograd.Tensor) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// writeInPlace copies src's values into dst's buffer, keeping every node
// that references dst pointed at the updated data.
func writeInPlace(dst, src *tensor.RawTensor) {
	copy(dst.Data(), src.Data())
}
