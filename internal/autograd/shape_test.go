package autograd

import (
	"testing"

	"github.com/gradflow-ml/gradflow/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBool(t *testing.T, data []bool, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	mask, err := tensor.FromBool(data, shape, tensor.CPU)
	require.NoError(t, err)
	return mask
}

func TestReshape_Backward(t *testing.T) {
	ctx, b := testSetup()

	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b).RequireGrad()
	y := x.Reshape(tensor.Shape{3, 2})
	require.True(t, y.Shape().Equal(tensor.Shape{3, 2}))

	loss := y.MulScalar(3).Sum(nil, false)
	require.NoError(t, loss.Backward())

	require.True(t, x.Grad().Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{3, 3, 3, 3, 3, 3}, x.Grad().AsFloat32())
}

func TestTranspose_Backward(t *testing.T) {
	ctx, b := testSetup()

	// Weight one side of the transposed result so the inverse permutation is
	// actually exercised.
	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b).RequireGrad()
	w := ctx.MustFromFloat32([]float32{1, 10, 2, 20, 3, 30}, tensor.Shape{3, 2}, b)

	loss := x.Transpose().Mul(w).Sum(nil, false)
	require.NoError(t, loss.Backward())

	require.True(t, x.Grad().Shape().Equal(tensor.Shape{2, 3}))
	// grad(x^T) = w; inverted back, x.grad[i][j] = w[j][i].
	assert.Equal(t, []float32{1, 2, 3, 10, 20, 30}, x.Grad().AsFloat32())
}

func TestTranspose_Permutation3D(t *testing.T) {
	ctx, b := testSetup()

	x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}, b).RequireGrad()
	y := x.Transpose(2, 0, 1)
	require.True(t, y.Shape().Equal(tensor.Shape{2, 2, 2}))

	require.NoError(t, y.Sum(nil, false).Backward())
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, x.Grad().AsFloat32())
}

func TestCat(t *testing.T) {
	ctx, b := testSetup()

	t.Run("BackwardBlocks", func(t *testing.T) {
		a := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b).RequireGrad()
		c := ctx.MustFromFloat32([]float32{3, 4, 5}, tensor.Shape{3}, b).RequireGrad()

		out, err := a.Cat([]*Tensor{c}, 0)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 4, 5}, out.Raw().AsFloat32())

		w := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5}, tensor.Shape{5}, b)
		require.NoError(t, out.Mul(w).Sum(nil, false).Backward())

		assert.Equal(t, []float32{1, 2}, a.Grad().AsFloat32())
		assert.Equal(t, []float32{3, 4, 5}, c.Grad().AsFloat32())
	})

	t.Run("NegativeDim", func(t *testing.T) {
		a := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{1, 2}, b)
		c := ctx.MustFromFloat32([]float32{3, 4}, tensor.Shape{1, 2}, b)
		out, err := a.Cat([]*Tensor{c}, -1)
		require.NoError(t, err)
		require.True(t, out.Shape().Equal(tensor.Shape{1, 4}))
		assert.Equal(t, []float32{1, 2, 3, 4}, out.Raw().AsFloat32())
	})

	t.Run("DimOutOfRange", func(t *testing.T) {
		a := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b)
		c := ctx.MustFromFloat32([]float32{3, 4}, tensor.Shape{2}, b)
		_, err := a.Cat([]*Tensor{c}, 1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NoOthers", func(t *testing.T) {
		a := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b)
		out, err := a.Cat(nil, 0)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, out.Raw().AsFloat32())
		// An untracked operand yields an untracked result.
		assert.False(t, out.RequiresGrad())
	})

	t.Run("BackendMismatch", func(t *testing.T) {
		a := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b)
		gpu := ctx.NewTensor(tensor.Zeros(tensor.Shape{2}, tensor.Float32, tensor.WebGPU), b)
		_, err := a.Cat([]*Tensor{gpu}, 0)
		require.ErrorIs(t, err, ErrBackendMismatch)
	})
}

func TestSplit(t *testing.T) {
	ctx, b := testSetup()

	t.Run("BackwardScatters", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6}, b).RequireGrad()

		parts, err := x.Split(3, 0)
		require.NoError(t, err)
		require.Len(t, parts, 3)
		assert.Equal(t, []float32{1, 2}, parts[0].Raw().AsFloat32())
		assert.Equal(t, []float32{3, 4}, parts[1].Raw().AsFloat32())
		assert.Equal(t, []float32{5, 6}, parts[2].Raw().AsFloat32())

		// Only the middle part feeds the loss; the others stay at zero grad.
		require.NoError(t, parts[1].MulScalar(5).Sum(nil, false).Backward())
		assert.Equal(t, []float32{0, 0, 5, 5, 0, 0}, x.Grad().AsFloat32())
	})

	t.Run("AllPartsAccumulate", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b).RequireGrad()

		parts, err := x.Split(2, 0)
		require.NoError(t, err)

		loss := parts[0].MulScalar(2).Sum(nil, false).Add(parts[1].MulScalar(3).Sum(nil, false))
		require.NoError(t, loss.Backward())
		assert.Equal(t, []float32{2, 2, 3, 3}, x.Grad().AsFloat32())
	})

	t.Run("RoundTripWithCat", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b).RequireGrad()
		parts, err := x.Split(3, 1)
		require.NoError(t, err)

		back, err := parts[0].Cat(parts[1:], 1)
		require.NoError(t, err)
		assert.Equal(t, x.Raw().AsFloat32(), back.Raw().AsFloat32())

		// Gradient through the round trip behaves like an identity op.
		w := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
		require.NoError(t, back.Mul(w).Sum(nil, false).Backward())
		assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.Grad().AsFloat32())
	})

	t.Run("NotDivisible", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b)
		_, err := x.Split(2, 0)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("DimOutOfRange", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b)
		_, err := x.Split(2, 1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestMaskedFill(t *testing.T) {
	ctx, b := testSetup()

	t.Run("BlocksGradAtFilledPositions", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b).RequireGrad()
		mask := mustBool(t, []bool{false, true, false, true}, tensor.Shape{4})

		y, err := x.MaskedFill(mask, -99)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, -99, 3, -99}, y.Raw().AsFloat32())

		require.NoError(t, y.MulScalar(2).Sum(nil, false).Backward())
		assert.Equal(t, []float32{2, 0, 2, 0}, x.Grad().AsFloat32())
	})

	t.Run("BroadcastMask", func(t *testing.T) {
		// A (2,) tensor against a (2,2) mask: the input broadcasts into the
		// result, so its gradient is the column sum of the unmasked grads.
		x := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b).RequireGrad()
		mask := mustBool(t, []bool{true, false, false, false}, tensor.Shape{2, 2})

		y, err := x.MaskedFill(mask, 0)
		require.NoError(t, err)
		require.True(t, y.Shape().Equal(tensor.Shape{2, 2}))
		assert.Equal(t, []float32{0, 2, 1, 2}, y.Raw().AsFloat32())

		require.NoError(t, y.Sum(nil, false).Backward())
		require.True(t, x.Grad().Shape().Equal(tensor.Shape{2}))
		assert.Equal(t, []float32{1, 2}, x.Grad().AsFloat32())
	})

	t.Run("NonBoolMask", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2}, tensor.Shape{2}, b)
		notBool := tensor.Ones(tensor.Shape{2}, tensor.Float32, tensor.CPU)
		_, err := x.MaskedFill(notBool, 0)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("IncompatibleShapes", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b)
		mask := mustBool(t, []bool{true, false}, tensor.Shape{2})
		_, err := x.MaskedFill(mask, 0)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestHalf(t *testing.T) {
	ctx, b := testSetup()

	t.Run("CastAndGrad", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b).RequireGrad()

		h, err := x.Half()
		require.NoError(t, err)
		assert.Equal(t, tensor.Float16, h.Raw().DType())

		require.NoError(t, h.Sum(nil, false).Backward())
		assert.Equal(t, tensor.Float32, x.Grad().DType())
		assert.Equal(t, []float32{1, 1, 1}, x.Grad().AsFloat32())
	})

	t.Run("NonFloat32", func(t *testing.T) {
		raw := tensor.Zeros(tensor.Shape{2}, tensor.Float64, tensor.CPU)
		x := ctx.NewTensor(raw, b)
		_, err := x.Half()
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestIndex(t *testing.T) {
	ctx, b := testSetup()

	t.Run("BackwardScatters", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{3, 3}, b).RequireGrad()

		y, err := x.Index([]int{0, 1}, []int{2, 3})
		require.NoError(t, err)
		require.True(t, y.Shape().Equal(tensor.Shape{2, 2}))
		assert.Equal(t, []float32{2, 3, 5, 6}, y.Raw().AsFloat32())

		require.NoError(t, y.MulScalar(4).Sum(nil, false).Backward())
		assert.Equal(t, []float32{0, 4, 4, 0, 4, 4, 0, 0, 0}, x.Grad().AsFloat32())
	})

	t.Run("OverlappingReadsAccumulate", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b).RequireGrad()

		a, err := x.Index([]int{0}, []int{2})
		require.NoError(t, err)
		c, err := x.Index([]int{1}, []int{3})
		require.NoError(t, err)

		loss := a.Sum(nil, false).Add(c.Sum(nil, false))
		require.NoError(t, loss.Backward())
		assert.Equal(t, []float32{1, 2, 1}, x.Grad().AsFloat32())
	})

	t.Run("TrailingDimsWhole", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, b)
		y, err := x.Index([]int{1}, []int{3})
		require.NoError(t, err)
		require.True(t, y.Shape().Equal(tensor.Shape{2, 2}))
		assert.Equal(t, []float32{3, 4, 5, 6}, y.Raw().AsFloat32())
	})

	t.Run("InvalidRange", func(t *testing.T) {
		x := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b)

		_, err := x.Index([]int{0}, []int{4})
		require.ErrorIs(t, err, ErrInvalidArgument)
		_, err = x.Index([]int{2}, []int{2})
		require.ErrorIs(t, err, ErrInvalidArgument)
		_, err = x.Index([]int{0, 0}, []int{1})
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestSetSlice(t *testing.T) {
	ctx, b := testSetup()

	t.Run("WritesValues", func(t *testing.T) {
		dst := ctx.MustFromFloat32([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{3, 3}, b)
		src := ctx.MustFromFloat32([]float32{10, 20, 30, 40}, tensor.Shape{2, 2}, b)

		require.NoError(t, dst.SetSlice([]int{1, 1}, src))
		assert.Equal(t, []float32{1, 2, 3, 4, 10, 20, 7, 30, 40}, dst.Raw().AsFloat32())
	})

	t.Run("WritesGradRegion", func(t *testing.T) {
		dst := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{4}, b).RequireGrad()
		src := ctx.MustFromFloat32([]float32{5, 6}, tensor.Shape{2}, b).RequireGrad()

		// Materialize gradients on both sides first.
		require.NoError(t, dst.Sum(nil, false).Backward())
		require.NoError(t, src.MulScalar(3).Sum(nil, false).Backward())

		require.NoError(t, dst.SetSlice([]int{1}, src))
		assert.Equal(t, []float32{1, 5, 6, 4}, dst.Raw().AsFloat32())
		assert.Equal(t, []float32{1, 3, 3, 1}, dst.Grad().AsFloat32())
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		dst := ctx.MustFromFloat32([]float32{1, 2, 3}, tensor.Shape{3}, b)
		src := ctx.MustFromFloat32([]float32{4, 5}, tensor.Shape{2}, b)
		require.ErrorIs(t, dst.SetSlice([]int{2}, src), ErrInvalidArgument)
	})

	t.Run("RankMismatch", func(t *testing.T) {
		dst := ctx.MustFromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
		src := ctx.MustFromFloat32([]float32{5}, tensor.Shape{1}, b)
		require.ErrorIs(t, dst.SetSlice([]int{0, 0}, src), ErrInvalidArgument)
	})
}
