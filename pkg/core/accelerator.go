package core

import (
	"fmt"

	"github.com/lumos-dse/lumos/pkg/tech"
)

// bce is the baseline compute element all accelerator coefficients are relative to.
type bce struct {
	area, perf, dp, sp float64
	node               tech.Node
	bandwidth          float64
}

var bceParams = map[tech.Kind]bce{
	tech.CMOSHP:     {area: 24.125, perf: 43.5, dp: 20, sp: 0, node: 45, bandwidth: 1},
	tech.TFETHomo30: {area: 24.125 / 4, perf: 43.5 * tfetPerfScale, dp: 20 * tfetPowerScale, sp: 0, node: 22, bandwidth: 1},
}

// element is a baseline compute element derived at a node and voltage.
type element struct {
	table *tech.Table
	vdd   int

	a0, perf0, dp0, sp0, bw0 float64
	fs, dps, sps             float64
}

func newElement(lib *tech.Library, kind tech.Kind, node tech.Node, vdd *int) (*element, error) {
	base, ok := bceParams[kind]
	if !ok {
		return nil, &tech.ModelDataError{Kind: kind, Node: node, Reason: "no accelerator baseline for technology"}
	}
	table, err := lib.Table(kind, node)
	if err != nil {
		return nil, err
	}
	ratio, err := tech.RatioOf(kind, base.node, node)
	if err != nil {
		return nil, err
	}
	e := &element{
		table: table,
		vdd:   table.Vnom(),
		a0:    base.area * ratio.Area,
		perf0: base.perf * ratio.Perf,
		dp0:   base.dp * ratio.DynamicPower,
		sp0:   base.sp * ratio.StaticPower,
		bw0:   base.bandwidth * ratio.Freq,
	}
	if vdd != nil {
		e.vdd = *vdd
	}
	if e.fs, err = table.FreqScale(e.vdd); err != nil {
		return nil, err
	}
	if e.dps, err = table.DynamicPowerScale(e.vdd); err != nil {
		return nil, err
	}
	if e.sps, err = table.StaticPowerScale(e.vdd); err != nil {
		return nil, err
	}
	return e, nil
}

// powerDensity returns the power of one baseline element running a kernel with phi.
func (e *element) powerDensity(p KernelParams) float64 {
	return e.dp0*p.Phi*e.dps + e.sp0*e.sps
}

// effectiveArea is the part of area usable under the optional power and bandwidth budgets.
func (e *element) effectiveArea(area float64, p KernelParams, power, bandwidth *float64) float64 {
	eff := area
	if power != nil {
		if density := e.powerDensity(p); density > 0 {
			eff = min(eff, *power/density*e.a0)
		}
	}
	if bandwidth != nil && p.Bandwidth > 0 {
		eff = min(eff, *bandwidth/(e.bw0*p.Bandwidth)*e.a0)
	}
	return max(eff, 0)
}

func (e *element) perf(area float64, p KernelParams, power, bandwidth *float64) float64 {
	eff := e.effectiveArea(area, p, power, bandwidth)
	return e.perf0 * (eff / e.a0) * p.Miu * e.fs
}

// AcceleratorBuilder accumulates the parameters of an Accelerator.
type AcceleratorBuilder struct {
	lib    *tech.Library
	id     string
	kind   AcceleratorKind
	kernel *Kernel
	area   float64
	tech   tech.Kind
	node   *tech.Node
	vdd    *int
}

// NewAcceleratorBuilder returns a builder for a fixed-function accelerator in CMOS-HP.
func NewAcceleratorBuilder() AcceleratorBuilder {
	return AcceleratorBuilder{kind: ASIC, tech: tech.CMOSHP}
}

// WithLibrary sets the technology library. The embedded library is used otherwise.
func (b AcceleratorBuilder) WithLibrary(lib *tech.Library) AcceleratorBuilder {
	b.lib = lib
	return b
}

// WithID names the accelerator. The kernel name is used otherwise.
func (b AcceleratorBuilder) WithID(id string) AcceleratorBuilder {
	b.id = id
	return b
}

// WithKind sets the accelerator kind.
func (b AcceleratorBuilder) WithKind(kind AcceleratorKind) AcceleratorBuilder {
	b.kind = kind
	return b
}

// WithKernel binds the accelerator to a kernel.
func (b AcceleratorBuilder) WithKernel(k *Kernel) AcceleratorBuilder {
	b.kernel = k
	return b
}

// WithArea sets the die area in mm^2.
func (b AcceleratorBuilder) WithArea(area float64) AcceleratorBuilder {
	b.area = area
	return b
}

// WithTech sets the technology family.
func (b AcceleratorBuilder) WithTech(kind tech.Kind) AcceleratorBuilder {
	b.tech = kind
	return b
}

// WithNode sets the technology node.
func (b AcceleratorBuilder) WithNode(node tech.Node) AcceleratorBuilder {
	b.node = &node
	return b
}

// WithVdd sets the supply voltage in mV. Nominal voltage is used otherwise.
func (b AcceleratorBuilder) WithVdd(vdd int) AcceleratorBuilder {
	b.vdd = &vdd
	return b
}

// Build derives the Accelerator.
func (b AcceleratorBuilder) Build() (*Accelerator, error) {
	if b.kernel == nil {
		return nil, fmt.Errorf("%w: accelerator needs a kernel", ErrIncompleteBuilder)
	}
	if b.node == nil {
		return nil, fmt.Errorf("%w: accelerator needs a node", ErrIncompleteBuilder)
	}
	if !nonNegative(b.area) {
		return nil, fmt.Errorf("%w: accelerator area %g", ErrInvalidParameter, b.area)
	}
	params, err := b.kernel.Params(b.kind)
	if err != nil {
		return nil, err
	}
	lib, err := libraryOrDefault(b.lib)
	if err != nil {
		return nil, err
	}
	e, err := newElement(lib, b.tech, *b.node, b.vdd)
	if err != nil {
		return nil, err
	}
	id := b.id
	if id == "" {
		id = b.kernel.Name()
	}
	return &Accelerator{id: id, kind: b.kind, kernel: b.kernel, params: params, area: b.area, elem: e}, nil
}

// Accelerator is bound to one kernel and owned by a single system.
type Accelerator struct {
	id     string
	kind   AcceleratorKind
	kernel *Kernel
	params KernelParams
	area   float64
	elem   *element
}

// ID returns the accelerator identifier.
func (a *Accelerator) ID() string { return a.id }

// Kind returns the accelerator kind.
func (a *Accelerator) Kind() AcceleratorKind { return a.kind }

// Kernel returns the kernel the accelerator runs.
func (a *Accelerator) Kernel() *Kernel { return a.kernel }

// Area returns the configured area in mm^2.
func (a *Accelerator) Area() float64 { return a.area }

// Vdd returns the supply voltage in mV.
func (a *Accelerator) Vdd() int { return a.elem.vdd }

// SetArea updates the configured area.
func (a *Accelerator) SetArea(area float64) error {
	if !nonNegative(area) {
		return fmt.Errorf("%w: accelerator area %g", ErrInvalidParameter, area)
	}
	a.area = area
	return nil
}

// Perf returns the kernel performance. A nil budget leaves that resource unconstrained.
func (a *Accelerator) Perf(power, bandwidth *float64) float64 {
	return a.elem.perf(a.area, a.params, power, bandwidth)
}

// EffectiveArea returns the usable area under the given budgets.
func (a *Accelerator) EffectiveArea(power, bandwidth *float64) float64 {
	return a.elem.effectiveArea(a.area, a.params, power, bandwidth)
}

// EffectivePower returns the power drawn by the area usable under the given budgets.
func (a *Accelerator) EffectivePower(power, bandwidth *float64) float64 {
	return a.EffectiveArea(power, bandwidth) / a.elem.a0 * a.elem.powerDensity(a.params)
}

// DynamicPower returns the dynamic power with the whole area active.
func (a *Accelerator) DynamicPower() float64 {
	return a.area / a.elem.a0 * a.elem.dp0 * a.params.Phi * a.elem.dps
}

// StaticPower returns the static power of the whole area.
func (a *Accelerator) StaticPower() float64 {
	return a.area / a.elem.a0 * a.elem.sp0 * a.elem.sps
}

// Power returns the total power with the whole area active.
func (a *Accelerator) Power() float64 {
	return a.DynamicPower() + a.StaticPower()
}

// GPAccelerator is a reconfigurable or throughput accelerator usable by any
// kernel characterized for its kind.
type GPAccelerator struct {
	kind AcceleratorKind
	area float64
	elem *element
}

// NewGPAccelerator returns a general-purpose accelerator of kind in family
// techKind at node, at nominal voltage.
func NewGPAccelerator(lib *tech.Library, kind AcceleratorKind, techKind tech.Kind, node tech.Node, area float64) (*GPAccelerator, error) {
	if !kind.GeneralPurpose() {
		return nil, fmt.Errorf("%w: %s is not general purpose", ErrInvalidParameter, kind)
	}
	if !nonNegative(area) {
		return nil, fmt.Errorf("%w: accelerator area %g", ErrInvalidParameter, area)
	}
	lib, err := libraryOrDefault(lib)
	if err != nil {
		return nil, err
	}
	e, err := newElement(lib, techKind, node, nil)
	if err != nil {
		return nil, err
	}
	return &GPAccelerator{kind: kind, area: area, elem: e}, nil
}

// Kind returns the accelerator kind.
func (g *GPAccelerator) Kind() AcceleratorKind { return g.kind }

// Area returns the configured area in mm^2.
func (g *GPAccelerator) Area() float64 { return g.area }

// SetArea updates the configured area.
func (g *GPAccelerator) SetArea(area float64) error {
	if !nonNegative(area) {
		return fmt.Errorf("%w: accelerator area %g", ErrInvalidParameter, area)
	}
	g.area = area
	return nil
}

// Perf returns the performance of kernel on the accelerator.
func (g *GPAccelerator) Perf(k *Kernel, power, bandwidth *float64) (float64, error) {
	p, err := k.Params(g.kind)
	if err != nil {
		return 0, err
	}
	return g.elem.perf(g.area, p, power, bandwidth), nil
}

// EffectivePower returns the power drawn running kernel under the given budgets.
func (g *GPAccelerator) EffectivePower(k *Kernel, power, bandwidth *float64) (float64, error) {
	p, err := k.Params(g.kind)
	if err != nil {
		return 0, err
	}
	return g.elem.effectiveArea(g.area, p, power, bandwidth) / g.elem.a0 * g.elem.powerDensity(p), nil
}

// Supports reports whether kernel has parameters for the accelerator kind.
func (g *GPAccelerator) Supports(k *Kernel) bool {
	_, err := k.Params(g.kind)
	return err == nil
}

