package cpu

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

func TestCPUBackend_Sum(t *testing.T) {
	b := newTestBackend()

	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	result := b.Sum(x)

	if len(result.Shape()) != 0 {
		t.Fatalf("shape = %v, want scalar", result.Shape())
	}
	if result.AsFloat32()[0] != 21 {
		t.Errorf("Sum = %v, want 21", result.AsFloat32()[0])
	}
}

func TestCPUBackend_SumDim(t *testing.T) {
	b := newTestBackend()
	x := fromF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	t.Run("Dim0", func(t *testing.T) {
		result := b.SumDim(x, 0, false)
		if !result.Shape().Equal(tensor.Shape{3}) {
			t.Fatalf("shape = %v, want [3]", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{5, 7, 9}) {
			t.Errorf("SumDim(0) failed: got %v", result.AsFloat32())
		}
	})

	t.Run("Dim1KeepDim", func(t *testing.T) {
		result := b.SumDim(x, 1, true)
		if !result.Shape().Equal(tensor.Shape{2, 1}) {
			t.Fatalf("shape = %v, want [2 1]", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{6, 15}) {
			t.Errorf("SumDim(1, keep) failed: got %v", result.AsFloat32())
		}
	})

	t.Run("NegativeDim", func(t *testing.T) {
		result := b.SumDim(x, -1, false)
		if !result.Shape().Equal(tensor.Shape{2}) {
			t.Fatalf("shape = %v, want [2]", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{6, 15}) {
			t.Errorf("SumDim(-1) failed: got %v", result.AsFloat32())
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for out-of-range dim")
			}
		}()
		b.SumDim(x, 2, false)
	})
}

func TestCPUBackend_Expand(t *testing.T) {
	b := newTestBackend()

	t.Run("StretchAxis", func(t *testing.T) {
		x := fromF32(t, []float32{1, 2, 3}, tensor.Shape{1, 3})
		result := b.Expand(x, tensor.Shape{2, 3})
		if !float32SliceEqual(result.AsFloat32(), []float32{1, 2, 3, 1, 2, 3}) {
			t.Errorf("Expand failed: got %v", result.AsFloat32())
		}
	})

	t.Run("AddLeadingDims", func(t *testing.T) {
		x := fromF32(t, []float32{7}, tensor.Shape{1})
		result := b.Expand(x, tensor.Shape{2, 2, 1})
		if !float32SliceEqual(result.AsFloat32(), []float32{7, 7, 7, 7}) {
			t.Errorf("Expand failed: got %v", result.AsFloat32())
		}
	})

	t.Run("Incompatible", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for incompatible expand")
			}
		}()
		x := fromF32(t, []float32{1, 2}, tensor.Shape{2})
		b.Expand(x, tensor.Shape{3})
	})
}
