package autograd

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_Forward(t *testing.T) {
	ctx, b := testSetup()
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)

	t.Run("AllAxes", func(t *testing.T) {
		s := x.Sum(nil, false)
		require.True(t, s.Shape().Equal(tensor.Shape{}), "shape = %v", s.Shape())
		assert.InDelta(t, 21, s.Item(), 1e-6)
	})

	t.Run("SingleAxis", func(t *testing.T) {
		s := x.Sum([]int{0}, false)
		require.True(t, s.Shape().Equal(tensor.Shape{3}))
		assert.Equal(t, []float32{5, 7, 9}, s.Raw().AsFloat32())
	})

	t.Run("KeepDims", func(t *testing.T) {
		s := x.Sum([]int{1}, true)
		require.True(t, s.Shape().Equal(tensor.Shape{2, 1}))
		assert.Equal(t, []float32{6, 15}, s.Raw().AsFloat32())
	})

	t.Run("NegativeAxis", func(t *testing.T) {
		s := x.Sum([]int{-1}, false)
		require.True(t, s.Shape().Equal(tensor.Shape{2}))
		assert.Equal(t, []float32{6, 15}, s.Raw().AsFloat32())
	})

	t.Run("AxisOutOfRange", func(t *testing.T) {
		assert.Panics(t, func() { x.Sum([]int{2}, false) })
	})

	t.Run("DuplicateAxis", func(t *testing.T) {
		assert.Panics(t, func() { x.Sum([]int{0, 0}, false) })
	})
}

func TestSum_Backward(t *testing.T) {
	ctx, b := testSetup()

	// Reducing one axis then the rest: every element still receives grad 1.
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b).RequireGrad()
	loss := x.Sum([]int{1}, false).MulScalar(2).Sum(nil, false)
	require.NoError(t, loss.Backward())

	require.True(t, x.Grad().Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{2, 2, 2, 2, 2, 2}, x.Grad().AsFloat32())
}

func TestMean(t *testing.T) {
	ctx, b := testSetup()
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b).RequireGrad()

	m := x.Mean(nil, false)
	assert.InDelta(t, 2.5, m.Item(), 1e-6)

	require.NoError(t, m.Backward())
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, x.Grad().AsFloat32())
}

func TestVar(t *testing.T) {
	ctx, b := testSetup()
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b)

	t.Run("Population", func(t *testing.T) {
		v, err := x.Var(nil, false, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1.25, v.Item(), 1e-6)
	})

	t.Run("Sample", func(t *testing.T) {
		v, err := x.Var(nil, false, 1)
		require.NoError(t, err)
		assert.InDelta(t, 5.0/3.0, v.Item(), 1e-6)
	})

	t.Run("NoDegreesOfFreedom", func(t *testing.T) {
		_, err := x.Var(nil, false, 4)
		require.ErrorIs(t, err, ErrInvalidArgument)
		_, err = x.Var(nil, false, 5)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("PerAxis", func(t *testing.T) {
		m := ctx.MustFromFloat32([]float32{1, 3, 2, 6}, tensor.Shape{2, 2}, b)
		v, err := m.Var([]int{1}, false, 0)
		require.NoError(t, err)
		require.True(t, v.Shape().Equal(tensor.Shape{2}))
		assert.InDeltaSlice(t, []float32{1, 4}, v.Raw().AsFloat32(), 1e-5)
	})
}

func TestStd(t *testing.T) {
	ctx, b := testSetup()
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b)

	s, err := x.Std(nil, false, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.1180339887, s.Item(), 1e-5)

	_, err = x.Std(nil, false, 4)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGradCheck_Reductions(t *testing.T) {
	t.Run("MeanAxis", func(t *testing.T) {
		checkGrad(t, []float64{0.5, -1.2, 2.3, 0.1, -0.7, 1.9}, tensor.Shape{2, 3}, func(x *Tensor) *Tensor {
			return x.Mean([]int{1}, false).Mul(x.Mean([]int{1}, false)).Sum(nil, false)
		})
	})

	t.Run("Variance", func(t *testing.T) {
		checkGrad(t, []float64{0.5, -1.2, 2.3, 0.1}, tensor.Shape{4}, func(x *Tensor) *Tensor {
			v, err := x.Var(nil, false, 0)
			if err != nil {
				t.Fatalf("var: %v", err)
			}
			return v
		})
	})

	t.Run("SumKeepDims", func(t *testing.T) {
		checkGrad(t, []float64{0.4, 1.3, -0.8, 0.9}, tensor.Shape{2, 2}, func(x *Tensor) *Tensor {
			return x.Sum([]int{0}, true).Mul(x).Sum(nil, false)
		})
	})
}
