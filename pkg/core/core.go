package core

import (
	"fmt"

	"github.com/lumos-dse/lumos/pkg/tech"
)

// Variation enables the process variation penalty on a core.
type Variation struct {
	Sigma      tech.Sigma
	Mitigation float64
}

// CoreBuilder accumulates the parameters of a Core.
type CoreBuilder struct {
	lib       *tech.Library
	name      string
	baseline  *Baseline
	node      *tech.Node
	variation *Variation
}

// NewCoreBuilder returns an empty builder.
func NewCoreBuilder() CoreBuilder {
	return CoreBuilder{}
}

// WithLibrary sets the technology library. The embedded library is used otherwise.
func (b CoreBuilder) WithLibrary(lib *tech.Library) CoreBuilder {
	b.lib = lib
	return b
}

// WithVariant selects a predefined design.
func (b CoreBuilder) WithVariant(v Variant) CoreBuilder {
	if !v.valid() {
		b.baseline = nil
		b.name = v.String()
		return b
	}
	base := v.Baseline()
	b.baseline = &base
	b.name = v.String()
	return b
}

// WithBaseline selects a custom design.
func (b CoreBuilder) WithBaseline(name string, base Baseline) CoreBuilder {
	b.baseline = &base
	b.name = name
	return b
}

// WithNode sets the target node. The baseline node is used otherwise.
func (b CoreBuilder) WithNode(node tech.Node) CoreBuilder {
	b.node = &node
	return b
}

// WithVariation enables the variation penalty.
func (b CoreBuilder) WithVariation(sigma tech.Sigma, mitigation float64) CoreBuilder {
	b.variation = &Variation{Sigma: sigma, Mitigation: mitigation}
	return b
}

// Build derives an immutable Core.
func (b CoreBuilder) Build() (*Core, error) {
	if b.baseline == nil {
		if b.name != "" {
			return nil, fmt.Errorf("%w: unknown core variant %s", ErrIncompleteBuilder, b.name)
		}
		return nil, fmt.Errorf("%w: core needs a variant or baseline", ErrIncompleteBuilder)
	}
	base := *b.baseline
	if err := base.Validate(); err != nil {
		return nil, err
	}
	lib, err := libraryOrDefault(b.lib)
	if err != nil {
		return nil, err
	}
	node := base.Node
	if b.node != nil {
		node = *b.node
	}
	table, err := lib.Table(base.Tech, node)
	if err != nil {
		return nil, err
	}
	ratio, err := tech.RatioOf(base.Tech, base.Node, node)
	if err != nil {
		return nil, err
	}
	if v := b.variation; v != nil {
		if !v.Sigma.Valid() || v.Mitigation < 0 || v.Mitigation > 1 {
			return nil, fmt.Errorf("%w: sigma %d, mitigation %g", tech.ErrInvalidVariation, v.Sigma, v.Mitigation)
		}
		if !table.HasVariation() {
			return nil, &tech.ModelDataError{Kind: base.Tech, Node: node, Reason: "no Monte-Carlo data for variation"}
		}
	}

	c := &Core{
		lib:      lib,
		name:     b.name,
		baseline: base,
		table:    table,
		area:     base.Area * ratio.Area,
		perf0:    base.Perf * ratio.Perf,
		freq0:    base.Freq * ratio.Freq,
		dp0:      base.DynamicPower * ratio.DynamicPower,
		sp0:      base.StaticPower * ratio.StaticPower,
	}
	if b.variation != nil {
		v := *b.variation
		c.variation = &v
	}
	return c, nil
}

func libraryOrDefault(lib *tech.Library) (*tech.Library, error) {
	if lib != nil {
		return lib, nil
	}
	return tech.DefaultLibrary()
}

// Core is a general-purpose core at a given node. Every voltage is in mV and
// must lie within [Vmin, Vmax].
type Core struct {
	lib       *tech.Library
	name      string
	baseline  Baseline
	table     *tech.Table
	variation *Variation

	area, perf0, freq0, dp0, sp0 float64
}

// Name returns the variant name or custom name of the core.
func (c *Core) Name() string { return c.name }

// Node returns the technology node of the core.
func (c *Core) Node() tech.Node { return c.table.Node() }

// Tech returns the technology family of the core.
func (c *Core) Tech() tech.Kind { return c.table.Kind() }

// Table returns the scaling table the core evaluates against.
func (c *Core) Table() *tech.Table { return c.table }

// Baseline returns the measured baseline the core was derived from.
func (c *Core) Baseline() Baseline { return c.baseline }

// Variation returns the variation settings, nil when disabled.
func (c *Core) Variation() *Variation {
	if c.variation == nil {
		return nil
	}
	v := *c.variation
	return &v
}

// Area returns the core area in mm^2.
func (c *Core) Area() float64 { return c.area }

// Vmin returns the lowest supported voltage.
func (c *Core) Vmin() int { return c.table.Vmin() }

// Vmax returns the highest supported voltage.
func (c *Core) Vmax() int { return c.table.Vmax() }

// Vnom returns the nominal voltage.
func (c *Core) Vnom() int { return c.table.Vnom() }

// Ceiling returns the highest voltage the core may run at.
func (c *Core) Ceiling() int { return c.table.Ceiling() }

// PerfNominal returns the performance at nominal voltage without variation.
func (c *Core) PerfNominal() float64 { return c.perf0 }

func (c *Core) freqScale(vdd int) (float64, error) {
	fs, err := c.table.FreqScale(vdd)
	if err != nil {
		return 0, err
	}
	if c.variation == nil {
		return fs, nil
	}
	penalty, err := c.table.VariationPenalty(vdd, c.variation.Sigma, c.variation.Mitigation)
	if err != nil {
		return 0, err
	}
	return fs * penalty, nil
}

// Perf returns the relative performance at vdd.
func (c *Core) Perf(vdd int) (float64, error) {
	fs, err := c.freqScale(vdd)
	if err != nil {
		return 0, err
	}
	return c.perf0 * fs, nil
}

// Freq returns the frequency at vdd in GHz.
func (c *Core) Freq(vdd int) (float64, error) {
	fs, err := c.freqScale(vdd)
	if err != nil {
		return 0, err
	}
	return c.freq0 * fs, nil
}

// DynamicPower returns the dynamic power at vdd in W.
func (c *Core) DynamicPower(vdd int) (float64, error) {
	s, err := c.table.DynamicPowerScale(vdd)
	if err != nil {
		return 0, err
	}
	return c.dp0 * s, nil
}

// StaticPower returns the static power at vdd in W.
func (c *Core) StaticPower(vdd int) (float64, error) {
	s, err := c.table.StaticPowerScale(vdd)
	if err != nil {
		return 0, err
	}
	return c.sp0 * s, nil
}

// Power returns the total power at vdd in W.
func (c *Core) Power(vdd int) (float64, error) {
	dp, err := c.DynamicPower(vdd)
	if err != nil {
		return 0, err
	}
	sp, err := c.StaticPower(vdd)
	if err != nil {
		return 0, err
	}
	return dp + sp, nil
}

// AtNode returns the same design re-derived at another node.
func (c *Core) AtNode(node tech.Node) (*Core, error) {
	b := NewCoreBuilder().WithLibrary(c.lib).WithBaseline(c.name, c.baseline).WithNode(node)
	if c.variation != nil {
		b = b.WithVariation(c.variation.Sigma, c.variation.Mitigation)
	}
	return b.Build()
}
