package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Cast converts the tensor to a different float data type. Casting to the
// same dtype returns x unchanged.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x
	}
	if !x.DType().IsFloat() || !dtype.IsFloat() {
		panic(fmt.Sprintf("cast: unsupported conversion %s -> %s", x.DType(), dtype))
	}

	result := tensor.MustNewRaw(x.Shape(), dtype, cpu.device)

	// Go through float32: exact for every pair except float64 -> float16,
	// where the double rounding stays within half-precision tolerance.
	var read func(i int) float32
	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		read = func(i int) float32 { return src[i] }
	case tensor.Float64:
		src := x.AsFloat64()
		read = func(i int) float32 { return float32(src[i]) }
	case tensor.Float16:
		src := x.AsFloat16()
		read = func(i int) float32 { return tensor.Float16ToFloat32(src[i]) }
	}

	n := x.NumElements()
	switch dtype {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = read(i)
		}
	case tensor.Float64:
		dst := result.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = float64(read(i))
		}
	case tensor.Float16:
		dst := result.AsFloat16()
		for i := 0; i < n; i++ {
			dst[i] = tensor.Float32ToFloat16(read(i))
		}
	}

	return result
}
