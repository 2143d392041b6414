// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers for autograd parameters.
//
// Example:
//
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//	for step := 0; step < steps; step++ {
//	    opt.ZeroGrad()
//	    loss := criterion.Forward(model.Forward(x), y)
//	    if err := loss.Backward(); err != nil {
//	        log.Fatal(err)
//	    }
//	    opt.Step()
//	}
package optim

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
	"github.com/gradflow-ml/gradflow/internal/optim"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig holds SGD hyperparameters. Zero LR defaults to 0.01.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*autograd.Tensor, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam = optim.Adam

// AdamConfig holds Adam hyperparameters. Zero values take the usual
// defaults (lr 0.001, betas 0.9/0.999, eps 1e-8).
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over params.
func NewAdam(params []*autograd.Tensor, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}
