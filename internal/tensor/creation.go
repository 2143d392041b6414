package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// FromFloat32 creates a Float32 RawTensor from a data slice. The slice is
// copied, so the caller keeps ownership of its buffer.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	r, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	if len(data) != r.NumElements() {
		return nil, errElementCount(len(data), shape)
	}
	copy(r.AsFloat32(), data)
	return r, nil
}

// FromFloat64 creates a Float64 RawTensor from a data slice.
func FromFloat64(data []float64, shape Shape, device Device) (*RawTensor, error) {
	r, err := NewRaw(shape, Float64, device)
	if err != nil {
		return nil, err
	}
	if len(data) != r.NumElements() {
		return nil, errElementCount(len(data), shape)
	}
	copy(r.AsFloat64(), data)
	return r, nil
}

// FromBool creates a Bool RawTensor from a data slice. Useful for building
// masks for Where and MaskedFill.
func FromBool(data []bool, shape Shape, device Device) (*RawTensor, error) {
	r, err := NewRaw(shape, Bool, device)
	if err != nil {
		return nil, err
	}
	if len(data) != r.NumElements() {
		return nil, errElementCount(len(data), shape)
	}
	copy(r.AsBool(), data)
	return r, nil
}

// Zeros creates a zero-filled RawTensor. Panics on an invalid shape.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return MustNewRaw(shape, dtype, device)
}

// Ones creates a one-filled RawTensor. Panics on an invalid shape.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return Full(shape, 1, dtype, device)
}

// Full creates a RawTensor filled with value. Panics on an invalid shape or
// a non-float dtype.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	r := MustNewRaw(shape, dtype, device)
	Fill(r, value)
	return r
}

// Fill overwrites every element of r with value.
func Fill(r *RawTensor, value float64) {
	switch r.DType() {
	case Float32:
		v := float32(value)
		data := r.AsFloat32()
		for i := range data {
			data[i] = v
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Float16:
		v := Float32ToFloat16(float32(value))
		data := r.AsFloat16()
		for i := range data {
			data[i] = v
		}
	default:
		panic("Fill requires a float dtype, got " + r.DType().String())
	}
}

// ZerosLike creates a zero-filled RawTensor with the same shape, dtype, and
// device as r.
func ZerosLike(r *RawTensor) *RawTensor {
	return MustNewRaw(r.Shape(), r.DType(), r.Device())
}

// OnesLike creates a one-filled RawTensor with the same shape, dtype, and
// device as r.
func OnesLike(r *RawTensor) *RawTensor {
	return Full(r.Shape(), 1, r.DType(), r.Device())
}

// Randn creates a RawTensor with values drawn from the standard normal
// distribution via the Box-Muller transform. Float32 and Float64 only.
// Uses math/rand rather than crypto/rand: statistical quality is all that
// initialization needs, and seeding keeps runs reproducible.
func Randn(shape Shape, dtype DataType, device Device) *RawTensor {
	r := MustNewRaw(shape, dtype, device)
	n := r.NumElements()

	normal := func() (float64, float64) {
		u1 := rand.Float64() //nolint:gosec // G404: reproducible init, not crypto
		u2 := rand.Float64() //nolint:gosec // G404: reproducible init, not crypto
		z0 := math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
		z1 := math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
		return z0, z1
	}

	switch dtype {
	case Float32:
		data := r.AsFloat32()
		for i := 0; i < n; i += 2 {
			z0, z1 := normal()
			data[i] = float32(z0)
			if i+1 < n {
				data[i+1] = float32(z1)
			}
		}
	case Float64:
		data := r.AsFloat64()
		for i := 0; i < n; i += 2 {
			z0, z1 := normal()
			data[i] = z0
			if i+1 < n {
				data[i+1] = z1
			}
		}
	default:
		panic("Randn only supports float32 and float64 dtypes")
	}
	return r
}

// Rand creates a RawTensor with values uniformly distributed in [0, 1).
// Float32 and Float64 only.
func Rand(shape Shape, dtype DataType, device Device) *RawTensor {
	r := MustNewRaw(shape, dtype, device)

	switch dtype {
	case Float32:
		data := r.AsFloat32()
		for i := range data {
			data[i] = rand.Float32() //nolint:gosec // G404: reproducible init, not crypto
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = rand.Float64() //nolint:gosec // G404: reproducible init, not crypto
		}
	default:
		panic("Rand only supports float32 and float64 dtypes")
	}
	return r
}

func errElementCount(n int, shape Shape) error {
	return fmt.Errorf("data length %d does not match shape %v (%d elements)",
		n, shape, shape.NumElements())
}
