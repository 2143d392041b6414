package cpu

import (
	"fmt"

	"github.com/gradflow-ml/gradflow/internal/parallel"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MatMul performs 2-D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		matmulKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// BatchMatMul performs batched matrix multiplication over the trailing two
// dimensions. Operands must have equal rank >= 3 and identical batch
// dimensions; the graph layer broadcasts batch dimensions beforehand.
//
// [B..., M, K] @ [B..., K, N] -> [B..., M, N]
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()
	ndim := len(aShape)

	if ndim < 3 {
		panic(fmt.Sprintf("batchmatmul: inputs must be at least 3D, got %dD", ndim))
	}
	if len(bShape) != ndim {
		panic(fmt.Sprintf("batchmatmul: rank mismatch: %dD vs %dD", ndim, len(bShape)))
	}
	for i := 0; i < ndim-2; i++ {
		if aShape[i] != bShape[i] {
			panic(fmt.Sprintf("batchmatmul: batch dimension mismatch at dim %d: %d vs %d", i, aShape[i], bShape[i]))
		}
	}

	m := aShape[ndim-2]
	k := aShape[ndim-1]
	if bShape[ndim-2] != k {
		panic(fmt.Sprintf("batchmatmul: inner dimension mismatch: %d vs %d", k, bShape[ndim-2]))
	}
	n := bShape[ndim-1]

	batchSize := 1
	for i := 0; i < ndim-2; i++ {
		batchSize *= aShape[i]
	}

	outShape := aShape.Clone()
	outShape[ndim-2] = m
	outShape[ndim-1] = n

	result := tensor.MustNewRaw(outShape, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		batchMatmulKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), batchSize, m, k, n)
	case tensor.Float64:
		batchMatmulKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), batchSize, m, k, n)
	default:
		panic(fmt.Sprintf("batchmatmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// matmulKernel is the naive O(M*N*K) inner product, parallelized over
// output rows. Each row writes a disjoint slice of c.
func matmulKernel[T float](c, a, b []T, m, k, n int) {
	parallel.For(m, func(i int) {
		for j := 0; j < n; j++ {
			var sum T
			for p := 0; p < k; p++ {
				sum += a[i*k+p] * b[p*n+j]
			}
			c[i*n+j] = sum
		}
	}, parallel.DefaultConfig())
}

func batchMatmulKernel[T float](c, a, b []T, batchSize, m, k, n int) {
	sizeA := m * k
	sizeB := k * n
	sizeC := m * n

	for batch := 0; batch < batchSize; batch++ {
		ca := c[batch*sizeC : (batch+1)*sizeC]
		aa := a[batch*sizeA : (batch+1)*sizeA]
		ba := b[batch*sizeB : (batch+1)*sizeB]
		matmulKernel(ca, aa, ba, m, k, n)
	}
}
