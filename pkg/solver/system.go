package solver

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/tech"
)

// SystemBuilder accumulates the parameters of a System.
type SystemBuilder struct {
	lib      *tech.Library
	budget   *core.Budget
	core     *core.Core
	serial   *core.Core
	registry *core.KernelRegistry
	gpKind   *core.AcceleratorKind
	gpRatio  float64
	refPerf  float64
	memory   *MemoryHierarchy
	logger   *logr.Logger
}

// NewSystemBuilder returns an empty builder.
func NewSystemBuilder() SystemBuilder {
	return SystemBuilder{refPerf: core.ReferencePerf}
}

// WithLibrary sets the technology library used for accelerators.
func (b SystemBuilder) WithLibrary(lib *tech.Library) SystemBuilder {
	b.lib = lib
	return b
}

// WithBudget sets the chip budget.
func (b SystemBuilder) WithBudget(budget core.Budget) SystemBuilder {
	b.budget = &budget
	return b
}

// WithCore sets the throughput core replicated across the free area.
func (b SystemBuilder) WithCore(c *core.Core) SystemBuilder {
	b.core = c
	return b
}

// WithSerialCore sets a dedicated core for the serial fraction. It occupies
// its own area. The throughput core runs the serial fraction otherwise.
func (b SystemBuilder) WithSerialCore(c *core.Core) SystemBuilder {
	b.serial = c
	return b
}

// WithRegistry sets the kernel registry used to resolve kernels.
func (b SystemBuilder) WithRegistry(r *core.KernelRegistry) SystemBuilder {
	b.registry = r
	return b
}

// WithGPAccelerator adds a general-purpose accelerator of kind taking
// areaRatio of the budget area. It serves kernels without a dedicated ASIC.
func (b SystemBuilder) WithGPAccelerator(kind core.AcceleratorKind, areaRatio float64) SystemBuilder {
	b.gpKind = &kind
	b.gpRatio = areaRatio
	return b
}

// WithReferencePerf sets the performance every result is normalized by.
func (b SystemBuilder) WithReferencePerf(perf float64) SystemBuilder {
	b.refPerf = perf
	return b
}

// WithMemory enables the cache stall model for applications with a memory profile.
func (b SystemBuilder) WithMemory(h MemoryHierarchy) SystemBuilder {
	b.memory = &h
	return b
}

// WithLogger sets the logger. The controller-runtime root logger is used otherwise.
func (b SystemBuilder) WithLogger(logger logr.Logger) SystemBuilder {
	b.logger = &logger
	return b
}

// Build validates the configuration and returns a System.
func (b SystemBuilder) Build() (*System, error) {
	if b.budget == nil {
		return nil, fmt.Errorf("%w: system needs a budget", core.ErrIncompleteBuilder)
	}
	if err := b.budget.Validate(); err != nil {
		return nil, err
	}
	if b.core == nil {
		return nil, fmt.Errorf("%w: system needs a throughput core", core.ErrIncompleteBuilder)
	}
	if b.registry == nil {
		return nil, fmt.Errorf("%w: system needs a kernel registry", core.ErrIncompleteBuilder)
	}
	if !(b.refPerf > 0) {
		return nil, fmt.Errorf("%w: reference perf %g", core.ErrInvalidParameter, b.refPerf)
	}
	if b.memory != nil {
		if err := b.memory.Validate(); err != nil {
			return nil, err
		}
	}
	lib := b.lib
	if lib == nil {
		var err error
		if lib, err = tech.DefaultLibrary(); err != nil {
			return nil, err
		}
	}
	logger := ctrl.Log.WithName("solver")
	if b.logger != nil {
		logger = *b.logger
	}

	s := &System{
		lib:      lib,
		budget:   *b.budget,
		core:     b.core,
		serial:   b.core,
		registry: b.registry,
		refPerf:  b.refPerf,
		memory:   b.memory,
		asics:    make(map[string]*core.Accelerator),
		logger:   logger,
	}
	s.budget.Bandwidth = maps.Clone(b.budget.Bandwidth)

	if b.serial != nil && b.serial != b.core {
		if b.serial.Node() != b.core.Node() {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("serial core at %s, throughput core at %s", b.serial.Node(), b.core.Node())}
		}
		if b.serial.Area() > s.budget.Area {
			return nil, &ConfigurationError{Resource: "area", Requested: b.serial.Area(), Available: s.budget.Area, Reason: "serial core does not fit"}
		}
		s.serial = b.serial
		s.dedicatedSerial = true
	}
	if b.gpKind != nil {
		gp, err := core.NewGPAccelerator(lib, *b.gpKind, b.core.Tech(), b.core.Node(), 0)
		if err != nil {
			return nil, err
		}
		s.gp = gp
		s.useGP = true
		if err := s.SetGPAccelerator(b.gpRatio); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// System is a chip design under evaluation. It is owned by a single goroutine.
type System struct {
	lib      *tech.Library
	budget   core.Budget
	core     *core.Core
	serial   *core.Core
	registry *core.KernelRegistry
	refPerf  float64
	memory   *MemoryHierarchy
	logger   logr.Logger

	dedicatedSerial bool
	asics           map[string]*core.Accelerator
	gp              *core.GPAccelerator
	useGP           bool

	// dim caches the core count sweep until the next area change
	dim *dimSweep
}

// Budget returns the chip budget.
func (s *System) Budget() core.Budget { return s.budget }

// Node returns the technology node of the chip.
func (s *System) Node() tech.Node { return s.core.Node() }

// Core returns the throughput core.
func (s *System) Core() *core.Core { return s.core }

// SerialCore returns the core that runs the serial fraction.
func (s *System) SerialCore() *core.Core { return s.serial }

// Registry returns the kernel registry.
func (s *System) Registry() *core.KernelRegistry { return s.registry }

// UsedArea returns the area taken by accelerators and a dedicated serial core.
func (s *System) UsedArea() float64 {
	used := 0.0
	for _, id := range slices.Sorted(maps.Keys(s.asics)) {
		used += s.asics[id].Area()
	}
	if s.gp != nil {
		used += s.gp.Area()
	}
	if s.dedicatedSerial {
		used += s.serial.Area()
	}
	return used
}

// FreeArea returns the area left for throughput cores.
func (s *System) FreeArea() float64 {
	return max(s.budget.Area-s.UsedArea(), 0)
}

// MaxCoreNum returns floor(FreeArea / core area).
func (s *System) MaxCoreNum() int {
	return int(s.FreeArea() / s.core.Area())
}

// SetASIC dedicates areaRatio of the budget area to a fixed-function
// accelerator for kernel. An existing accelerator with the same id is
// resized. A kernel has at most one ASIC.
func (s *System) SetASIC(kernel, id string, areaRatio float64) error {
	if areaRatio <= 0 || areaRatio > 1 {
		return fmt.Errorf("%w: area ratio %g not in (0,1]", core.ErrInvalidParameter, areaRatio)
	}
	k, err := s.registry.Get(kernel)
	if err != nil {
		return err
	}
	area := areaRatio * s.budget.Area

	existing, exists := s.asics[id]
	if exists && existing.Kernel().Name() != kernel {
		return &ConfigurationError{Reason: fmt.Sprintf("accelerator %s is bound to kernel %s", id, existing.Kernel().Name())}
	}
	if !exists {
		if other := s.asicFor(kernel); other != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("kernel %s already has accelerator %s", kernel, other.ID())}
		}
	}

	available := s.budget.Area - s.UsedArea()
	if exists {
		available += existing.Area()
	}
	if area > available+areaTolerance {
		return &ConfigurationError{Resource: "area", Requested: area, Available: available,
			Reason: fmt.Sprintf("accelerator %s for %s does not fit", id, kernel)}
	}

	if exists {
		if err := existing.SetArea(area); err != nil {
			return err
		}
	} else {
		acc, err := core.NewAcceleratorBuilder().
			WithLibrary(s.lib).
			WithID(id).
			WithKind(core.ASIC).
			WithKernel(k).
			WithTech(s.core.Tech()).
			WithNode(s.core.Node()).
			WithArea(area).
			Build()
		if err != nil {
			return err
		}
		s.asics[id] = acc
	}
	s.dim = nil
	return nil
}

// areaTolerance absorbs rounding when area ratios add up to exactly one.
const areaTolerance = 1e-9

// RemoveASIC drops the accelerator with the given id.
func (s *System) RemoveASIC(id string) error {
	if _, ok := s.asics[id]; !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("no accelerator %s", id)}
	}
	delete(s.asics, id)
	s.dim = nil
	return nil
}

// ASIC returns the accelerator with the given id.
func (s *System) ASIC(id string) (*core.Accelerator, bool) {
	acc, ok := s.asics[id]
	return acc, ok
}

// ASICs returns every fixed-function accelerator ordered by id.
func (s *System) ASICs() []*core.Accelerator {
	out := make([]*core.Accelerator, 0, len(s.asics))
	for _, id := range slices.Sorted(maps.Keys(s.asics)) {
		out = append(out, s.asics[id])
	}
	return out
}

func (s *System) asicFor(kernel string) *core.Accelerator {
	for _, id := range slices.Sorted(maps.Keys(s.asics)) {
		if acc := s.asics[id]; acc.Kernel().Name() == kernel {
			return acc
		}
	}
	return nil
}

// SetGPAccelerator resizes the general-purpose accelerator to areaRatio of
// the budget area. Zero leaves it without area.
func (s *System) SetGPAccelerator(areaRatio float64) error {
	if s.gp == nil {
		return &ConfigurationError{Reason: "system has no general-purpose accelerator"}
	}
	if areaRatio < 0 || areaRatio > 1 {
		return fmt.Errorf("%w: area ratio %g not in [0,1]", core.ErrInvalidParameter, areaRatio)
	}
	area := areaRatio * s.budget.Area
	available := s.budget.Area - s.UsedArea() + s.gp.Area()
	if area > available+areaTolerance {
		return &ConfigurationError{Resource: "area", Requested: area, Available: available,
			Reason: fmt.Sprintf("%s accelerator does not fit", s.gp.Kind())}
	}
	if err := s.gp.SetArea(area); err != nil {
		return err
	}
	s.dim = nil
	return nil
}

// GPAccelerator returns the general-purpose accelerator or nil.
func (s *System) GPAccelerator() *core.GPAccelerator { return s.gp }

// UseGPAccelerator enables or disables offloading to the general-purpose accelerator.
func (s *System) UseGPAccelerator(use bool) {
	s.useGP = use
}
