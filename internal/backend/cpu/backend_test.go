package cpu

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func newTestBackend() *CPUBackend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-5
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

func fromF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat32(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}
	return r
}

// Float16 arithmetic runs in float32 and rounds the result back to half.
func TestCPUBackend_Float16Arithmetic(t *testing.T) {
	b := newTestBackend()

	a16 := b.Cast(fromF32(t, []float32{1, 2, 3}, tensor.Shape{3}), tensor.Float16)
	c16 := b.Cast(fromF32(t, []float32{10, 20, 30}, tensor.Shape{3}), tensor.Float16)

	sum := b.Cast(b.Add(a16, c16), tensor.Float32)
	if got := sum.AsFloat32(); !float32SliceEqual(got, []float32{11, 22, 33}) {
		t.Errorf("f16 add = %v, want [11 22 33]", got)
	}
	if dt := b.Add(a16, c16).DType(); dt != tensor.Float16 {
		t.Errorf("f16 add dtype = %v, want Float16", dt)
	}

	prod := b.Cast(b.Mul(a16, c16), tensor.Float32)
	if got := prod.AsFloat32(); !float32SliceEqual(got, []float32{10, 40, 90}) {
		t.Errorf("f16 mul = %v, want [10 40 90]", got)
	}

	scaled := b.Cast(b.MulScalar(a16, 2), tensor.Float32)
	if got := scaled.AsFloat32(); !float32SliceEqual(got, []float32{2, 4, 6}) {
		t.Errorf("f16 mulScalar = %v, want [2 4 6]", got)
	}

	total := b.SumDim(a16, 0, false)
	if total.DType() != tensor.Float16 {
		t.Errorf("f16 sumdim dtype = %v, want Float16", total.DType())
	}
	if got := b.Cast(total, tensor.Float32).AsFloat32(); !float32SliceEqual(got, []float32{6}) {
		t.Errorf("f16 sumdim = %v, want [6]", got)
	}
}

func TestCPUBackend_New(t *testing.T) {
	b := New()
	if b == nil {
		t.Fatal("New() returned nil")
	}
	if b.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", b.Name())
	}
	if b.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", b.Device())
	}
}

func TestCPUBackend_NewFor(t *testing.T) {
	b := NewFor(tensor.WebGPU)
	if b.Device() != tensor.WebGPU {
		t.Errorf("Expected device WebGPU, got %v", b.Device())
	}
	x := tensor.Zeros(tensor.Shape{2}, tensor.Float32, tensor.WebGPU)
	if got := b.AddScalar(x, 1).Device(); got != tensor.WebGPU {
		t.Errorf("result device = %v, want WebGPU", got)
	}
}

func TestCPUBackend_Add(t *testing.T) {
	b := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		o := fromF32(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

		result := b.Add(a, o)
		expected := []float32{11, 13, 15, 17, 19, 21}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("BroadcastVector", func(t *testing.T) {
		a := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		o := fromF32(t, []float32{10, 20, 30}, tensor.Shape{3})

		result := b.Add(a, o)
		if !result.Shape().Equal(tensor.Shape{2, 3}) {
			t.Fatalf("shape = %v, want [2 3]", result.Shape())
		}
		expected := []float32{11, 22, 33, 14, 25, 36}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("broadcast Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("BroadcastBothWays", func(t *testing.T) {
		a := fromF32(t, []float32{1, 2, 3}, tensor.Shape{3, 1})
		o := fromF32(t, []float32{10, 20}, tensor.Shape{1, 2})

		result := b.Add(a, o)
		expected := []float32{11, 21, 12, 22, 13, 23}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("broadcast Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("IncompatibleShapes", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for incompatible shapes")
			}
		}()
		a := fromF32(t, []float32{1, 2, 3}, tensor.Shape{3})
		o := fromF32(t, []float32{1, 2}, tensor.Shape{2})
		b.Add(a, o)
	})
}

func TestCPUBackend_SubMulDiv(t *testing.T) {
	b := newTestBackend()

	a := fromF32(t, []float32{4, 9, 16, 25}, tensor.Shape{4})
	o := fromF32(t, []float32{2, 3, 4, 5}, tensor.Shape{4})

	if got := b.Sub(a, o).AsFloat32(); !float32SliceEqual(got, []float32{2, 6, 12, 20}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := b.Mul(a, o).AsFloat32(); !float32SliceEqual(got, []float32{8, 27, 64, 125}) {
		t.Errorf("Mul failed: got %v", got)
	}
	if got := b.Div(a, o).AsFloat32(); !float32SliceEqual(got, []float32{2, 3, 4, 5}) {
		t.Errorf("Div failed: got %v", got)
	}
}

func TestCPUBackend_Float64(t *testing.T) {
	b := newTestBackend()

	a, err := tensor.FromFloat64([]float64{1.5, 2.5}, tensor.Shape{2}, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	o, err := tensor.FromFloat64([]float64{0.5, 0.5}, tensor.Shape{2}, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}

	result := b.Add(a, o)
	if result.DType() != tensor.Float64 {
		t.Fatalf("dtype = %v, want Float64", result.DType())
	}
	got := result.AsFloat64()
	if got[0] != 2.0 || got[1] != 3.0 {
		t.Errorf("Add float64 failed: got %v", got)
	}
}

func TestCPUBackend_FreshAllocation(t *testing.T) {
	// Operands must be untouched after an operation; the autograd layer
	// reads them again during the backward pass.
	b := newTestBackend()

	a := fromF32(t, []float32{1, 2, 3}, tensor.Shape{3})
	o := fromF32(t, []float32{4, 5, 6}, tensor.Shape{3})

	_ = b.Add(a, o)
	_ = b.Mul(a, o)

	if !float32SliceEqual(a.AsFloat32(), []float32{1, 2, 3}) {
		t.Errorf("operand a mutated: %v", a.AsFloat32())
	}
	if !float32SliceEqual(o.AsFloat32(), []float32{4, 5, 6}) {
		t.Errorf("operand b mutated: %v", o.AsFloat32())
	}
}

func TestCPUBackend_Transpose(t *testing.T) {
	b := newTestBackend()

	t.Run("Default2D", func(t *testing.T) {
		x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		result := b.Transpose(x)
		if !result.Shape().Equal(tensor.Shape{3, 2}) {
			t.Fatalf("shape = %v, want [3 2]", result.Shape())
		}
		expected := []float32{1, 4, 2, 5, 3, 6}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Transpose failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Permutation3D", func(t *testing.T) {
		x := fromF32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})
		result := b.Transpose(x, 2, 0, 1)
		if !result.Shape().Equal(tensor.Shape{2, 2, 2}) {
			t.Fatalf("shape = %v, want [2 2 2]", result.Shape())
		}
		// result[i][j][k] = x[j][k][i]
		expected := []float32{1, 3, 5, 7, 2, 4, 6, 8}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Transpose failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("BadPermutation", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for invalid permutation")
			}
		}()
		x := fromF32(t, []float32{1, 2}, tensor.Shape{2, 1})
		b.Transpose(x, 0, 0)
	})
}

func TestCPUBackend_Reshape(t *testing.T) {
	b := newTestBackend()

	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	result := b.Reshape(x, tensor.Shape{3, 2})

	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", result.Shape())
	}
	// Reshape returns a view sharing the buffer.
	result.AsFloat32()[0] = 42
	if x.AsFloat32()[0] != 42 {
		t.Error("Reshape should return a buffer-sharing view")
	}
}
