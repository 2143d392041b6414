// Copyright 2025 GradFlow ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for N-dimensional tensor storage
// and the backend contract compute devices implement.
//
// Example:
//
//	b := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	y := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	z := b.Add(x, y)
package tensor

import (
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the dense row-major storage unit all operations work on.
type RawTensor = tensor.RawTensor

// Backend is the contract every compute device implements.
type Backend = tensor.Backend

// NewRaw allocates a zero-filled tensor with the given shape, dtype and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// MustNewRaw is NewRaw that panics on invalid shape.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.MustNewRaw(shape, dtype, device)
}

// FromFloat32 builds a Float32 tensor from a copy of data.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape, device)
}

// FromFloat64 builds a Float64 tensor from a copy of data.
func FromFloat64(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape, device)
}

// FromBool builds a Bool tensor from a copy of data.
func FromBool(data []bool, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromBool(data, shape, device)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Full(shape, value, dtype, device)
}

// ZerosLike creates a zero tensor with the same shape, dtype and device as r.
func ZerosLike(r *RawTensor) *RawTensor {
	return tensor.ZerosLike(r)
}

// OnesLike creates a ones tensor with the same shape, dtype and device as r.
func OnesLike(r *RawTensor) *RawTensor {
	return tensor.OnesLike(r)
}

// Randn creates a tensor of samples from the standard normal distribution.
func Randn(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Randn(shape, dtype, device)
}

// Rand creates a tensor of samples uniform on [0, 1).
func Rand(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Rand(shape, dtype, device)
}

// BroadcastShapes computes the NumPy-style broadcast result of two shapes.
// The bool result reports whether the shapes are compatible.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
