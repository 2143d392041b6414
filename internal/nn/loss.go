package nn

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/autograd"
)

// MSELoss computes squared error between predictions and targets. Reduction
// selects how the per-element errors collapse: "mean" (the default, also
// chosen by the zero value) or "sum".
type MSELoss struct {
	Reduction string
}

// NewMSELoss creates the loss with the given reduction. Anything other than
// "mean", "sum", or empty returns ErrInvalidArgument.
func NewMSELoss(reduction string) (*MSELoss, error) {
	switch reduction {
	case "", "mean", "sum":
		return &MSELoss{Reduction: reduction}, nil
	}
	return nil, fmt.Errorf("mse: %w: unknown reduction %q", autograd.ErrInvalidArgument, reduction)
}

// Forward returns the reduced squared error as a scalar tensor.
func (l MSELoss) Forward(pred, target *autograd.Tensor) *autograd.Tensor {
	diff := pred.Sub(target)
	sq := diff.Mul(diff)
	if l.Reduction == "sum" {
		return sq.Sum(nil, false)
	}
	return sq.Mean(nil, false)
}
