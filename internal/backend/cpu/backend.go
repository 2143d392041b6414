// Package cpu implements the reference CPU backend: portable Go kernels for
// every operation in the Backend contract.
package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// CPUBackend implements tensor operations with plain Go loops.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// NewFor creates a CPU backend whose results are tagged with the given
// device. GPU backends use it to run operations they have no kernels for
// while keeping results logically on their own device.
func NewFor(device tensor.Device) *CPUBackend {
	return &CPUBackend{device: device}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() == tensor.Float16 && b.DType() == tensor.Float16 {
		return cpu.halfBinary(a, b, cpu.Add)
	}
	out := cpu.binaryResult("add", a, b)
	switch a.DType() {
	case tensor.Float32:
		binaryElem(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float32) float32 { return x + y })
	case tensor.Float64:
		binaryElem(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float64) float64 { return x + y })
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
	}
	return out
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() == tensor.Float16 && b.DType() == tensor.Float16 {
		return cpu.halfBinary(a, b, cpu.Sub)
	}
	out := cpu.binaryResult("sub", a, b)
	switch a.DType() {
	case tensor.Float32:
		binaryElem(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float32) float32 { return x - y })
	case tensor.Float64:
		binaryElem(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float64) float64 { return x - y })
	default:
		panic(fmt.Sprintf("sub: unsupported dtype %s", a.DType()))
	}
	return out
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() == tensor.Float16 && b.DType() == tensor.Float16 {
		return cpu.halfBinary(a, b, cpu.Mul)
	}
	out := cpu.binaryResult("mul", a, b)
	switch a.DType() {
	case tensor.Float32:
		binaryElem(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float32) float32 { return x * y })
	case tensor.Float64:
		binaryElem(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float64) float64 { return x * y })
	default:
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}
	return out
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() == tensor.Float16 && b.DType() == tensor.Float16 {
		return cpu.halfBinary(a, b, cpu.Div)
	}
	out := cpu.binaryResult("div", a, b)
	switch a.DType() {
	case tensor.Float32:
		binaryElem(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float32) float32 { return x / y })
	case tensor.Float64:
		binaryElem(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), out.Shape(), func(x, y float64) float64 { return x / y })
	default:
		panic(fmt.Sprintf("div: unsupported dtype %s", a.DType()))
	}
	return out
}

// binaryResult validates a binary operation and allocates its result tensor.
func (cpu *CPUBackend) binaryResult(op string, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return tensor.MustNewRaw(outShape, a.DType(), cpu.device)
}

// float constrains kernels to the element types arithmetic runs on.
// Float16 tensors are cast up before arithmetic.
type float interface {
	~float32 | ~float64
}

// halfBinary computes a binary op on Float16 operands in Float32 and rounds
// the result back to Float16.
func (cpu *CPUBackend) halfBinary(a, b *tensor.RawTensor, op func(x, y *tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	r := op(cpu.Cast(a, tensor.Float32), cpu.Cast(b, tensor.Float32))
	return cpu.Cast(r, tensor.Float16)
}

// binaryElem applies op element-wise, broadcasting a and b to outShape.
func binaryElem[T float](dst, a, b []T, aShape, bShape, outShape tensor.Shape, op func(T, T) T) {
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = op(a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	for i := range dst {
		ai := computeFlatIndex(i, outStrides, aStrides)
		bi := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = op(a[ai], b[bi])
	}
}

// Reshape returns a view of t with a new shape. The element count must match.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	out, err := t.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return out
}

// Transpose permutes the tensor's dimensions. With no axes given, all
// dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := tensor.MustNewRaw(newShape, t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		transposeElem(result.AsFloat32(), t.AsFloat32(), shape, newShape, axes)
	case tensor.Float64:
		transposeElem(result.AsFloat64(), t.AsFloat64(), shape, newShape, axes)
	case tensor.Float16:
		transposeElem(result.AsFloat16(), t.AsFloat16(), shape, newShape, axes)
	case tensor.Bool:
		transposeElem(result.AsBool(), t.AsBool(), shape, newShape, axes)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return result
}

// transposeElem copies src into dst following the axis permutation.
func transposeElem[T any](dst, src []T, inShape, outShape tensor.Shape, axes []int) {
	inStrides := inShape.ComputeStrides()
	outStrides := outShape.ComputeStrides()

	for i := range dst {
		// Decompose output index into coordinates, map back through the
		// permutation to the source element.
		srcIdx := 0
		rem := i
		for d := 0; d < len(outShape); d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			srcIdx += coord * inStrides[axes[d]]
		}
		dst[i] = src[srcIdx]
	}
}
