package tensor

// Backend defines the contract every compute device implements. All
// operations allocate fresh result tensors on the backend's device, except
// Clip and SliceSet which mutate their first argument in place, and Reshape
// which returns a view.
//
// Shape or dtype violations are programmer errors and panic; the graph layer
// validates user-facing input before it reaches a backend.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise operations against a scalar.
	AddScalar(x *RawTensor, s float64) *RawTensor
	SubScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	DivScalar(x *RawTensor, s float64) *RawTensor

	// PowScalar raises each element to the power p. A negative exponent is
	// computed as (1/x)^|p|.
	PowScalar(x *RawTensor, p float64) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Clip bounds every element of x to [min, max], in place.
	Clip(x *RawTensor, min, max float64)

	// LessScalar returns a Bool tensor marking elements strictly below s.
	LessScalar(x *RawTensor, s float64) *RawTensor

	// Matrix operations. MatMul takes two 2-D operands; BatchMatMul takes
	// operands of equal rank >= 3 with identical leading batch dimensions.
	MatMul(a, b *RawTensor) *RawTensor
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, shape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Manipulation.
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Split(x *RawTensor, n, dim int) []*RawTensor

	// Indexing. Slice copies the region [starts[i], stops[i]) along each
	// axis; SliceSet writes src into dst at the given offsets, in place.
	Slice(x *RawTensor, starts, stops []int) *RawTensor
	SliceSet(dst, src *RawTensor, starts []int)

	// Where selects elements from x where cond is true, else from y.
	// cond must be a Bool tensor broadcastable to the result shape.
	Where(cond, x, y *RawTensor) *RawTensor

	// Cast converts to a different data type.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
