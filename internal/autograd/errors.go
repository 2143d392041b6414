package autograd

import "errors"

// Sentinel errors returned by the graph API. Callers match them with
// errors.Is; the wrapped message carries the operation-specific detail.
var (
	// ErrGradDisabled is returned by Backward when gradient tracking is
	// switched off on the tensor's context.
	ErrGradDisabled = errors.New("gradient tracking is disabled")

	// ErrGraphCycle is returned by Backward when the parent links contain
	// a cycle and no valid evaluation order exists.
	ErrGraphCycle = errors.New("cycle detected in computation graph")

	// ErrBackendMismatch is returned when an operation combines tensors
	// that live on different backends.
	ErrBackendMismatch = errors.New("tensors on different backends")

	// ErrInvalidArgument is returned for user input that fails validation,
	// such as a variance correction at least as large as the sample count.
	ErrInvalidArgument = errors.New("invalid argument")
)
