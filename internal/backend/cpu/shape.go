package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Expand broadcasts x to newShape, materializing the stretched elements.
// Each dimension of x must equal the target dimension or be 1; missing
// leading dimensions are treated as 1.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()

	if len(newShape) < len(xShape) {
		panic(fmt.Sprintf("expand: new shape %v has fewer dimensions than input shape %v",
			newShape, xShape))
	}

	offset := len(newShape) - len(xShape)
	for i := 0; i < len(xShape); i++ {
		if xShape[i] != 1 && xShape[i] != newShape[offset+i] {
			panic(fmt.Sprintf("expand: cannot expand dimension %d from %d to %d",
				i, xShape[i], newShape[offset+i]))
		}
	}

	result := tensor.MustNewRaw(newShape, x.DType(), cpu.device)

	outStrides := newShape.ComputeStrides()
	inStrides := computeBroadcastStridesForShape(xShape, newShape)

	switch x.DType() {
	case tensor.Float32:
		expandKernel(result.AsFloat32(), x.AsFloat32(), outStrides, inStrides)
	case tensor.Float64:
		expandKernel(result.AsFloat64(), x.AsFloat64(), outStrides, inStrides)
	case tensor.Float16:
		expandKernel(result.AsFloat16(), x.AsFloat16(), outStrides, inStrides)
	case tensor.Bool:
		expandKernel(result.AsBool(), x.AsBool(), outStrides, inStrides)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}

	return result
}

func expandKernel[T any](dst, src []T, outStrides, inStrides []int) {
	for i := range dst {
		dst[i] = src[computeFlatIndex(i, outStrides, inStrides)]
	}
}
