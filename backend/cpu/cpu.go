// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend for tensor operations.
package cpu

import (
	internalcpu "github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	b := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	y := b.AddScalar(x, 1)
func New() *Backend {
	return internalcpu.New()
}
