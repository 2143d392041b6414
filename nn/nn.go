// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks on top of autograd:
// layers, activations, loss functions and parameter initialization.
//
// Example:
//
//	b := cpu.New()
//	ctx := autograd.NewContext()
//	model := nn.NewSequential(
//	    nn.NewLinear(ctx, b, 4, 16),
//	    &nn.ReLU{},
//	    nn.NewLinear(ctx, b, 16, 1),
//	)
//	out := model.Forward(x)
package nn

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Module is anything with a forward pass and trainable parameters.
type Module = nn.Module

// Sequential chains modules, feeding each output into the next.
type Sequential = nn.Sequential

// NewSequential builds a Sequential from modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Linear is a fully connected layer: y = x @ Wᵀ + b.
type Linear = nn.Linear

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear(ctx *autograd.Context, b tensor.Backend, inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(ctx, b, inFeatures, outFeatures)
}

// LayerNorm normalizes over the last dimension with learned scale and shift.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a LayerNorm over the trailing dim elements.
func NewLayerNorm(ctx *autograd.Context, b tensor.Backend, dim int, eps float64) *LayerNorm {
	return nn.NewLayerNorm(ctx, b, dim, eps)
}

// Activations.
type (
	ReLU    = nn.ReLU
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
)

// Dropout randomly zeroes elements during training.
type Dropout = nn.Dropout

// NewDropout creates a Dropout layer with drop probability p in [0, 1).
func NewDropout(p float64) *Dropout {
	return nn.NewDropout(p)
}

// MSELoss is the squared error criterion. Its zero value reduces with mean.
type MSELoss = nn.MSELoss

// NewMSELoss creates an MSELoss with the given reduction, "mean" or "sum".
func NewMSELoss(reduction string) (*MSELoss, error) {
	return nn.NewMSELoss(reduction)
}
