// Package webgpu implements a GPU-accelerated backend on top of WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Float32 element-wise arithmetic and 2D matrix multiplication run as WGSL
// compute shaders; every other operation falls back to the CPU kernels and
// keeps the WebGPU device tag, so the backend always satisfies the full
// tensor.Backend contract.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Backend implements tensor operations on GPU using WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// CPU kernels used for operations without a shader. Results carry the
	// WebGPU device tag so they stay usable with GPU-produced tensors.
	fallback *cpu.CPUBackend
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if the wgpu native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		fallback:  cpu.NewFor(tensor.WebGPU),
	}, nil
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if the wgpu native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil

	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// shaderEligible reports whether a binary element-wise op can run on GPU:
// float32 operands of identical shape. Broadcasting stays on the CPU path.
func shaderEligible(a, other *tensor.RawTensor) bool {
	return a.DType() == tensor.Float32 &&
		other.DType() == tensor.Float32 &&
		a.Shape().Equal(other.Shape())
}

// Add returns the element-wise sum of a and b.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !shaderEligible(a, other) {
		return b.fallback.Add(a, other)
	}
	result, err := b.runBinaryOp(a, other, "add", addShader)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Sub returns the element-wise difference of a and b.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !shaderEligible(a, other) {
		return b.fallback.Sub(a, other)
	}
	result, err := b.runBinaryOp(a, other, "sub", subShader)
	if err != nil {
		panic("webgpu: Sub: " + err.Error())
	}
	return result
}

// Mul returns the element-wise product of a and b.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !shaderEligible(a, other) {
		return b.fallback.Mul(a, other)
	}
	result, err := b.runBinaryOp(a, other, "mul", mulShader)
	if err != nil {
		panic("webgpu: Mul: " + err.Error())
	}
	return result
}

// Div returns the element-wise quotient of a and b.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !shaderEligible(a, other) {
		return b.fallback.Div(a, other)
	}
	result, err := b.runBinaryOp(a, other, "div", divShader)
	if err != nil {
		panic("webgpu: Div: " + err.Error())
	}
	return result
}

// MatMul multiplies two 2D matrices.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 {
		return b.fallback.MatMul(a, other)
	}
	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}
	return result
}

// Operations without a dedicated shader delegate to the CPU kernels.

func (b *Backend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.fallback.AddScalar(x, s)
}

func (b *Backend) SubScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.fallback.SubScalar(x, s)
}

func (b *Backend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.fallback.MulScalar(x, s)
}

func (b *Backend) DivScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.fallback.DivScalar(x, s)
}

func (b *Backend) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	return b.fallback.PowScalar(x, p)
}

func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Exp(x)
}

func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Log(x)
}

func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Sqrt(x)
}

func (b *Backend) Clip(x *tensor.RawTensor, min, max float64) {
	b.fallback.Clip(x, min, max)
}

func (b *Backend) LessScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return b.fallback.LessScalar(x, s)
}

func (b *Backend) BatchMatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.BatchMatMul(a, other)
}

func (b *Backend) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.fallback.Reshape(t, shape)
}

func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	return b.fallback.Transpose(t, axes...)
}

func (b *Backend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.fallback.Expand(x, shape)
}

func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Sum(x)
}

func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.fallback.SumDim(x, dim, keepDim)
}

func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.fallback.Cat(tensors, dim)
}

func (b *Backend) Split(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	return b.fallback.Split(x, n, dim)
}

func (b *Backend) Slice(x *tensor.RawTensor, starts, stops []int) *tensor.RawTensor {
	return b.fallback.Slice(x, starts, stops)
}

func (b *Backend) SliceSet(dst, src *tensor.RawTensor, starts []int) {
	b.fallback.SliceSet(dst, src, starts)
}

func (b *Backend) Where(cond, x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.fallback.Where(cond, x, y)
}

func (b *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return b.fallback.Cast(x, dtype)
}
