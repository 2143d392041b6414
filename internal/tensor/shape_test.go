package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 5, Shape{5}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements(), "scalar shape has one element")
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1, 3}.Validate())
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
	assert.Empty(t, Shape{}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Shape
		expected Shape
		needs    bool
	}{
		{"same shape", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false},
		{"scalar-ish", Shape{1}, Shape{4, 5}, Shape{4, 5}, true},
		{"trailing vector", Shape{3, 4}, Shape{4}, Shape{3, 4}, true},
		{"middle one", Shape{2, 1, 4}, Shape{2, 3, 4}, Shape{2, 3, 4}, true},
		{"both stretch", Shape{3, 1}, Shape{1, 4}, Shape{3, 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, needs, err := BroadcastShapes(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.needs, needs)
		})
	}

	_, _, err := BroadcastShapes(Shape{2, 3}, Shape{2, 4})
	assert.Error(t, err)
}

func TestBroadcastAxes(t *testing.T) {
	// (3, 4) + (4,) stretches b over result axis 0.
	aAxes, bAxes := BroadcastAxes(Shape{3, 4}, Shape{4})
	assert.Empty(t, aAxes)
	assert.Equal(t, []int{0}, bAxes)

	// (3, 1) + (1, 4): a stretched over axis 1, b over axis 0.
	aAxes, bAxes = BroadcastAxes(Shape{3, 1}, Shape{1, 4})
	assert.Equal(t, []int{1}, aAxes)
	assert.Equal(t, []int{0}, bAxes)

	// Equal shapes stretch nothing.
	aAxes, bAxes = BroadcastAxes(Shape{2, 2}, Shape{2, 2})
	assert.Empty(t, aAxes)
	assert.Empty(t, bAxes)

	// Size-1 axes on both sides stay untouched.
	aAxes, bAxes = BroadcastAxes(Shape{1, 3}, Shape{1, 3})
	assert.Empty(t, aAxes)
	assert.Empty(t, bAxes)
}
