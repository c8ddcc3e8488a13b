package core

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// AcceleratorKind is the class of an accelerator.
type AcceleratorKind int

// enumeration of AcceleratorKind
const (
	// ASIC is a fixed-function accelerator dedicated to one kernel.
	ASIC AcceleratorKind = iota
	// FPGA is a reconfigurable fabric shared by all kernels.
	FPGA
	// GPU is a throughput unit shared by all kernels.
	GPU
)

var acceleratorKindNames = [...]string{ASIC: "asic", FPGA: "fpga", GPU: "gpu"}

func (k AcceleratorKind) String() string {
	if k < 0 || int(k) >= len(acceleratorKindNames) {
		return fmt.Sprintf("AcceleratorKind(%d)", int(k))
	}
	return acceleratorKindNames[k]
}

// GeneralPurpose reports whether the kind can run any kernel.
func (k AcceleratorKind) GeneralPurpose() bool {
	return k == FPGA || k == GPU
}

// ParseAcceleratorKind returns the kind with the given name, e.g. "fpga".
func ParseAcceleratorKind(name string) (AcceleratorKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range acceleratorKindNames {
		if n == name {
			return AcceleratorKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown accelerator kind %q", ErrInvalidParameter, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k AcceleratorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AcceleratorKind) UnmarshalText(text []byte) error {
	parsed, err := ParseAcceleratorKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KernelParams are the speedup coefficients of a kernel on one accelerator kind,
// relative to a baseline compute element of the same area.
type KernelParams struct {
	// Miu is the relative performance.
	Miu float64
	// Phi is the relative dynamic power.
	Phi float64
	// Bandwidth is the relative memory bandwidth demand.
	Bandwidth float64
}

// Validate checks that the coefficients are usable.
func (p KernelParams) Validate() error {
	if !(p.Miu > 0) || math.IsInf(p.Miu, 0) {
		return fmt.Errorf("%w: miu %g must be positive", ErrInvalidParameter, p.Miu)
	}
	if !(p.Phi >= 0) || math.IsInf(p.Phi, 0) {
		return fmt.Errorf("%w: phi %g must be non-negative", ErrInvalidParameter, p.Phi)
	}
	if !(p.Bandwidth >= 0) || math.IsInf(p.Bandwidth, 0) {
		return fmt.Errorf("%w: bandwidth %g must be non-negative", ErrInvalidParameter, p.Bandwidth)
	}
	return nil
}

// Kernel is an accelerable computation.
type Kernel struct {
	name   string
	params map[AcceleratorKind]KernelParams
}

// NewKernel returns a kernel with the given per-kind parameters.
func NewKernel(name string, params map[AcceleratorKind]KernelParams) (*Kernel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: kernel name is empty", ErrInvalidParameter)
	}
	for _, kind := range slices.Sorted(maps.Keys(params)) {
		if err := params[kind].Validate(); err != nil {
			return nil, fmt.Errorf("kernel %s on %s: %w", name, kind, err)
		}
	}
	return &Kernel{name: name, params: maps.Clone(params)}, nil
}

// Name returns the kernel name.
func (k *Kernel) Name() string { return k.name }

// Params returns the coefficients of the kernel on kind.
func (k *Kernel) Params(kind AcceleratorKind) (KernelParams, error) {
	p, ok := k.params[kind]
	if !ok {
		return KernelParams{}, fmt.Errorf("%w: %s on %s", ErrNoKernelParams, k.name, kind)
	}
	return p, nil
}

// Kinds returns the accelerator kinds the kernel is characterized for.
func (k *Kernel) Kinds() []AcceleratorKind {
	return slices.Sorted(maps.Keys(k.params))
}

// KernelRegistry resolves kernels by name. A registry is populated once and
// then shared read-only.
type KernelRegistry struct {
	kernels map[string]*Kernel
}

// NewKernelRegistry returns a registry holding kernels.
func NewKernelRegistry(kernels ...*Kernel) (*KernelRegistry, error) {
	r := &KernelRegistry{kernels: make(map[string]*Kernel, len(kernels))}
	for _, k := range kernels {
		if err := r.Register(k); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a kernel.
func (r *KernelRegistry) Register(k *Kernel) error {
	if _, exists := r.kernels[k.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKernel, k.name)
	}
	r.kernels[k.name] = k
	return nil
}

// Get returns the kernel with the given name.
func (r *KernelRegistry) Get(name string) (*Kernel, error) {
	k, ok := r.kernels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKernel, name)
	}
	return k, nil
}

// Names returns the registered kernel names in sorted order.
func (r *KernelRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r.kernels))
}

// Len returns the number of registered kernels.
func (r *KernelRegistry) Len() int {
	return len(r.kernels)
}

// DefaultKernelRegistry returns a registry with the characterized reference
// kernels: dense matrix multiply (MMM), Black-Scholes (BS) and FFT.
func DefaultKernelRegistry() *KernelRegistry {
	mmm, _ := NewKernel("MMM", map[AcceleratorKind]KernelParams{
		GPU:  {Miu: 3.41, Phi: 0.74, Bandwidth: 0.725},
		FPGA: {Miu: 0.75, Phi: 0.31, Bandwidth: 0.325},
		ASIC: {Miu: 27.4, Phi: 0.79, Bandwidth: 3.62},
	})
	bs, _ := NewKernel("BS", map[AcceleratorKind]KernelParams{
		GPU:  {Miu: 17.0, Phi: 0.57, Bandwidth: 5.85},
		FPGA: {Miu: 5.68, Phi: 0.26, Bandwidth: 3.975},
		ASIC: {Miu: 482, Phi: 4.75, Bandwidth: 66.249},
	})
	fft, _ := NewKernel("FFT", map[AcceleratorKind]KernelParams{
		GPU:  {Miu: 2.42, Phi: 0.59, Bandwidth: 1},
		FPGA: {Miu: 2.81, Phi: 0.29, Bandwidth: 1},
		ASIC: {Miu: 733, Phi: 5.34, Bandwidth: 1},
	})
	r, _ := NewKernelRegistry(mmm, bs, fft)
	return r
}
