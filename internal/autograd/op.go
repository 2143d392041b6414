package autograd

import "github.com/gradflow-ml/gradflow/internal/tensor"

// opKind tags the operation that produced a tensor. The backward scheduler
// dispatches on the tag; the record below carries the handful of parameters
// each gradient rule needs, instead of a captured closure.
type opKind int

const (
	opAdd opKind = iota
	opAddScalar
	opMul
	opMulScalar
	opPow
	opExp
	opLog
	opMatMul
	opSum
	opReshape
	opTranspose
	opCat
	opSplit
	opMaskedFill
	opHalf
	opIndex
)

// String returns the operation name, mainly for debugging output.
func (k opKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opAddScalar:
		return "add_scalar"
	case opMul:
		return "mul"
	case opMulScalar:
		return "mul_scalar"
	case opPow:
		return "pow"
	case opExp:
		return "exp"
	case opLog:
		return "log"
	case opMatMul:
		return "matmul"
	case opSum:
		return "sum"
	case opReshape:
		return "reshape"
	case opTranspose:
		return "transpose"
	case opCat:
		return "cat"
	case opSplit:
		return "split"
	case opMaskedFill:
		return "masked_fill"
	case opHalf:
		return "half"
	case opIndex:
		return "index"
	default:
		return "unknown"
	}
}

// opRecord is attached to every tracked result tensor. srcs holds all
// operand nodes in argument order, whether or not they require grad; the
// gradient rules need their forward values. The remaining fields are
// per-kind parameters and unused by other kinds.
type opRecord struct {
	kind opKind
	srcs []*Tensor

	// scalar operand: add_scalar / mul_scalar addend or factor, pow
	// exponent, masked_fill fill value.
	scalar float64

	// axes: sum reduction axes or transpose permutation.
	axes     []int
	keepDims bool

	// inShape: operand shape before sum or reshape.
	inShape tensor.Shape

	// lAxes / rAxes: broadcast result axes along which the left and right
	// operands were stretched (add, mul, and matmul batch dimensions).
	lAxes, rAxes []int

	// mask for masked_fill.
	mask *tensor.RawTensor

	// starts / stops: index or split region, one range per dimension.
	starts, stops []int

	// matmul bookkeeping: the promoted-and-expanded operands fed to the
	// kernel, the kernel output shape before promotion axes are dropped,
	// and which side was promoted from 1-D.
	aExp, bExp           *tensor.RawTensor
	fullShape            tensor.Shape
	lPromoted, rPromoted bool
}
