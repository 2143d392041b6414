// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autograd provides reverse-mode automatic differentiation over
// tensors. Operations on Tensor record a dynamic computation graph;
// Backward walks it in reverse topological order and accumulates gradients
// into every tensor marked as requiring them.
//
// Example:
//
//	b := cpu.New()
//	ctx := autograd.NewContext()
//	x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b).RequireGrad()
//	y := x.MulScalar(3).Sum(nil, false)
//	if err := y.Backward(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(x.Grad().AsFloat32()) // [3 3 3]
package autograd

import (
	"github.com/gradflow-ml/gradflow/internal/autograd"
)

// Context owns the gradient-tracking switch. Tensors created through a
// Context record graph edges only while tracking is enabled.
type Context = autograd.Context

// Tensor is a graph-aware tensor handle. All differentiable operations are
// methods on it.
type Tensor = autograd.Tensor

// NewContext returns a Context with gradient tracking enabled.
func NewContext() *Context {
	return autograd.NewContext()
}

// Sentinel errors returned by graph operations.
var (
	ErrGradDisabled    = autograd.ErrGradDisabled
	ErrGraphCycle      = autograd.ErrGraphCycle
	ErrBackendMismatch = autograd.ErrBackendMismatch
	ErrInvalidArgument = autograd.ErrInvalidArgument
)
