package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Slice copies the region [starts[i], stops[i]) along each axis into a fresh
// tensor. starts and stops must both have one entry per dimension.
func (cpu *CPUBackend) Slice(x *tensor.RawTensor, starts, stops []int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if len(starts) != ndim || len(stops) != ndim {
		panic(fmt.Sprintf("slice: got %d start and %d stop offsets for %dD tensor", len(starts), len(stops), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for d := 0; d < ndim; d++ {
		if starts[d] < 0 || stops[d] > shape[d] || starts[d] >= stops[d] {
			panic(fmt.Sprintf("slice: range [%d, %d) invalid for dimension %d of size %d",
				starts[d], stops[d], d, shape[d]))
		}
		outShape[d] = stops[d] - starts[d]
	}

	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)
	copyRegion(result, x, starts, false)
	return result
}

// SliceSet writes src into dst at the given start offsets, in place.
func (cpu *CPUBackend) SliceSet(dst, src *tensor.RawTensor, starts []int) {
	dShape := dst.Shape()
	sShape := src.Shape()
	ndim := len(dShape)

	if len(sShape) != ndim || len(starts) != ndim {
		panic(fmt.Sprintf("sliceset: rank mismatch: dst %dD, src %dD, %d offsets", ndim, len(sShape), len(starts)))
	}
	if dst.DType() != src.DType() {
		panic(fmt.Sprintf("sliceset: dtype mismatch: %s vs %s", dst.DType(), src.DType()))
	}
	for d := 0; d < ndim; d++ {
		if starts[d] < 0 || starts[d]+sShape[d] > dShape[d] {
			panic(fmt.Sprintf("sliceset: region start %d size %d exceeds dimension %d of size %d",
				starts[d], sShape[d], d, dShape[d]))
		}
	}

	copyRegion(dst, src, starts, true)
}

// copyRegion moves elements between a tensor and a sub-region of a larger
// one. With intoLarge the small tensor is written into big at the offsets;
// otherwise the region of big is read out into small.
func copyRegion(a, b *tensor.RawTensor, starts []int, intoLarge bool) {
	small, big := a, b
	if intoLarge {
		small, big = b, a
	}

	switch small.DType() {
	case tensor.Float32:
		regionKernel(small.AsFloat32(), big.AsFloat32(), small.Shape(), big.Shape(), starts, intoLarge)
	case tensor.Float64:
		regionKernel(small.AsFloat64(), big.AsFloat64(), small.Shape(), big.Shape(), starts, intoLarge)
	case tensor.Float16:
		regionKernel(small.AsFloat16(), big.AsFloat16(), small.Shape(), big.Shape(), starts, intoLarge)
	case tensor.Bool:
		regionKernel(small.AsBool(), big.AsBool(), small.Shape(), big.Shape(), starts, intoLarge)
	default:
		panic(fmt.Sprintf("slice: unsupported dtype %s", small.DType()))
	}
}

func regionKernel[T any](small, big []T, smallShape, bigShape tensor.Shape, starts []int, intoLarge bool) {
	smallStrides := smallShape.ComputeStrides()
	bigStrides := bigShape.ComputeStrides()

	for i := range small {
		bigIdx := 0
		rem := i
		for d := 0; d < len(smallShape); d++ {
			coord := rem / smallStrides[d]
			rem %= smallStrides[d]
			bigIdx += (coord + starts[d]) * bigStrides[d]
		}
		if intoLarge {
			big[bigIdx] = small[i]
		} else {
			small[i] = big[bigIdx]
		}
	}
}

// Where selects elements from x where cond is true, else from y. cond must
// be a Bool tensor; all three shapes broadcast together.
func (cpu *CPUBackend) Where(cond, x, y *tensor.RawTensor) *tensor.RawTensor {
	if cond.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", cond.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: x and y must have same dtype, got %s and %s", x.DType(), y.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(cond.Shape(), x.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	outShape, _, err = tensor.BroadcastShapes(outShape, y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	outStrides := outShape.ComputeStrides()
	condStrides := computeBroadcastStridesForShape(cond.Shape(), outShape)
	xStrides := computeBroadcastStridesForShape(x.Shape(), outShape)
	yStrides := computeBroadcastStridesForShape(y.Shape(), outShape)
	condData := cond.AsBool()

	switch x.DType() {
	case tensor.Float32:
		whereKernel(result.AsFloat32(), condData, x.AsFloat32(), y.AsFloat32(),
			outStrides, condStrides, xStrides, yStrides)
	case tensor.Float64:
		whereKernel(result.AsFloat64(), condData, x.AsFloat64(), y.AsFloat64(),
			outStrides, condStrides, xStrides, yStrides)
	case tensor.Float16:
		whereKernel(result.AsFloat16(), condData, x.AsFloat16(), y.AsFloat16(),
			outStrides, condStrides, xStrides, yStrides)
	default:
		panic(fmt.Sprintf("where: unsupported dtype %s", x.DType()))
	}

	return result
}

func whereKernel[T any](dst []T, cond []bool, x, y []T, outStrides, condStrides, xStrides, yStrides []int) {
	for i := range dst {
		if cond[computeFlatIndex(i, outStrides, condStrides)] {
			dst[i] = x[computeFlatIndex(i, outStrides, xStrides)]
		} else {
			dst[i] = y[computeFlatIndex(i, outStrides, yStrides)]
		}
	}
}
