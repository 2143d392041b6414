package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Cat concatenates tensors along the given dimension. All tensors must have
// the same dtype and the same shape except along dim. Negative dim counts
// from the end.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim
	result := tensor.MustNewRaw(outShape, dtype, cpu.device)

	switch dtype {
	case tensor.Float32:
		catKernel(result.AsFloat32(), outShape, collect(tensors, (*tensor.RawTensor).AsFloat32), shapes(tensors), dim)
	case tensor.Float64:
		catKernel(result.AsFloat64(), outShape, collect(tensors, (*tensor.RawTensor).AsFloat64), shapes(tensors), dim)
	case tensor.Float16:
		catKernel(result.AsFloat16(), outShape, collect(tensors, (*tensor.RawTensor).AsFloat16), shapes(tensors), dim)
	case tensor.Bool:
		catKernel(result.AsBool(), outShape, collect(tensors, (*tensor.RawTensor).AsBool), shapes(tensors), dim)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", dtype))
	}

	return result
}

// Split divides x into n equal parts along the given dimension. The
// dimension size must be divisible by n.
func (cpu *CPUBackend) Split(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	if n <= 0 {
		panic(fmt.Sprintf("split: n must be positive, got %d", n))
	}

	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("split: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if shape[dim]%n != 0 {
		panic(fmt.Sprintf("split: dimension %d size %d not divisible by %d", dim, shape[dim], n))
	}

	partSize := shape[dim] / n
	partShape := shape.Clone()
	partShape[dim] = partSize

	// Each part is a contiguous slice of x along dim.
	results := make([]*tensor.RawTensor, n)
	starts := make([]int, ndim)
	stops := append([]int(nil), shape...)
	for i := 0; i < n; i++ {
		starts[dim] = i * partSize
		stops[dim] = (i + 1) * partSize
		results[i] = cpu.Slice(x, starts, stops)
	}
	return results
}

// catKernel copies each source into its offset block of dst along dim.
func catKernel[T any](dst []T, outShape tensor.Shape, srcs [][]T, srcShapes []tensor.Shape, dim int) {
	outStrides := outShape.ComputeStrides()

	offset := 0
	for s, src := range srcs {
		shape := srcShapes[s]
		strides := shape.ComputeStrides()

		for i := range src {
			outIdx := 0
			rem := i
			for d := 0; d < len(shape); d++ {
				coord := rem / strides[d]
				rem %= strides[d]
				if d == dim {
					coord += offset
				}
				outIdx += coord * outStrides[d]
			}
			dst[outIdx] = src[i]
		}

		offset += shape[dim]
	}
}

func collect[T any](tensors []*tensor.RawTensor, view func(*tensor.RawTensor) []T) [][]T {
	out := make([][]T, len(tensors))
	for i, t := range tensors {
		out[i] = view(t)
	}
	return out
}

func shapes(tensors []*tensor.RawTensor) []tensor.Shape {
	out := make([]tensor.Shape, len(tensors))
	for i, t := range tensors {
		out[i] = t.Shape()
	}
	return out
}
