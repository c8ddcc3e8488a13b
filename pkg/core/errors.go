package core

import "errors"

var (
	// ErrCoverageExceeded is returned when kernel coverage would exceed the parallel fraction.
	ErrCoverageExceeded = errors.New("kernel coverage exceeds parallel fraction")
	// ErrDuplicateKernel is returned when a kernel is registered twice.
	ErrDuplicateKernel = errors.New("kernel already registered")
	// ErrUnknownKernel is returned for a kernel that is not registered.
	ErrUnknownKernel = errors.New("unknown kernel")
	// ErrNoKernelParams is returned when a kernel has no parameters for an accelerator kind.
	ErrNoKernelParams = errors.New("kernel has no parameters for accelerator kind")
	// ErrInvalidBudget is returned for a negative or non-finite budget.
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrIncompleteBuilder is returned by Build when a required field is missing.
	ErrIncompleteBuilder = errors.New("incomplete builder")
	// ErrInvalidParameter is returned for an out of range numeric parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
)
