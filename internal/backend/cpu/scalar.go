package cpu

import (
	"fmt"
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Scalar operations: element-wise against a single value.

// AddScalar adds s to each element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.mapElem("addScalar", x, func(v float64) float64 { return v + s })
}

// SubScalar subtracts s from each element.
func (cpu *CPUBackend) SubScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.mapElem("subScalar", x, func(v float64) float64 { return v - s })
}

// MulScalar multiplies each element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.mapElem("mulScalar", x, func(v float64) float64 { return v * s })
}

// DivScalar divides each element by s.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.mapElem("divScalar", x, func(v float64) float64 { return v / s })
}

// PowScalar raises each element to the power p. A negative exponent is
// computed as the reciprocal raised to |p|.
func (cpu *CPUBackend) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	if p < 0 {
		q := -p
		return cpu.mapElem("powScalar", x, func(v float64) float64 { return math.Pow(1/v, q) })
	}
	return cpu.mapElem("powScalar", x, func(v float64) float64 { return math.Pow(v, p) })
}

// mapElem applies op to every element, allocating a fresh result. The op
// works in float64; float32 tensors round-trip through it.
func (cpu *CPUBackend) mapElem(name string, x *tensor.RawTensor, op func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(op(float64(v)))
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = op(v)
		}
	case tensor.Float16:
		src := x.AsFloat16()
		dst := result.AsFloat16()
		for i, v := range src {
			dst[i] = tensor.Float32ToFloat16(float32(op(float64(tensor.Float16ToFloat32(v)))))
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
