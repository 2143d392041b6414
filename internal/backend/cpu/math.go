package cpu

import (
	"fmt"
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapElem("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapElem("log", x, math.Log)
}

// Sqrt computes element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapElem("sqrt", x, math.Sqrt)
}

// Clip bounds every element of x to [min, max], in place.
func (cpu *CPUBackend) Clip(x *tensor.RawTensor, min, max float64) {
	if min > max {
		panic(fmt.Sprintf("clip: min %v greater than max %v", min, max))
	}

	switch x.DType() {
	case tensor.Float32:
		lo, hi := float32(min), float32(max)
		data := x.AsFloat32()
		for i, v := range data {
			if v < lo {
				data[i] = lo
			} else if v > hi {
				data[i] = hi
			}
		}
	case tensor.Float64:
		data := x.AsFloat64()
		for i, v := range data {
			if v < min {
				data[i] = min
			} else if v > max {
				data[i] = max
			}
		}
	default:
		panic(fmt.Sprintf("clip: unsupported dtype %s", x.DType()))
	}
}

// LessScalar returns a Bool tensor marking elements strictly below s.
func (cpu *CPUBackend) LessScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), tensor.Bool, cpu.device)
	dst := result.AsBool()

	switch x.DType() {
	case tensor.Float32:
		v := float32(s)
		for i, e := range x.AsFloat32() {
			dst[i] = e < v
		}
	case tensor.Float64:
		for i, e := range x.AsFloat64() {
			dst[i] = e < s
		}
	default:
		panic(fmt.Sprintf("lessScalar: unsupported dtype %s", x.DType()))
	}

	return result
}
