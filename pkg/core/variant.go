package core

import (
	"fmt"
	"strings"

	"github.com/lumos-dse/lumos/pkg/tech"
)

// Baseline describes a core measured at its reference node and nominal voltage.
type Baseline struct {
	// Area in mm^2.
	Area float64
	// Perf is the relative single-thread performance.
	Perf float64
	// Freq in GHz.
	Freq float64
	// DynamicPower and StaticPower in W.
	DynamicPower float64
	StaticPower  float64
	// Node and Tech identify where the baseline was measured.
	Node tech.Node
	Tech tech.Kind
}

// Validate checks that the baseline describes a usable core.
func (b Baseline) Validate() error {
	if !(b.Area > 0) || !(b.Perf > 0) || !(b.Freq > 0) {
		return fmt.Errorf("%w: baseline area, perf and freq must be positive", ErrInvalidParameter)
	}
	if b.DynamicPower < 0 || b.StaticPower < 0 || b.DynamicPower+b.StaticPower <= 0 {
		return fmt.Errorf("%w: baseline power must be non-negative with a positive total", ErrInvalidParameter)
	}
	return nil
}

// Variant is a predefined core design.
type Variant int

// enumeration of Variant
const (
	IOCMOS Variant = iota
	O3CMOS
	IOTFET
	O3TFET
	BigTFET
	SmallFinFET
	BigFinFET
)

// ReferencePerf is the performance of the in-order CMOS core at 45nm, the
// unit every reported speedup is expressed in.
const ReferencePerf = 12.92

// tfetPerfScale and tfetPowerScale translate 45nm CMOS measurements to 22nm homojunction TFETs.
const (
	tfetPerfScale  = 1.21 / 1.65
	tfetPowerScale = 0.206 / 2.965
)

type variantInfo struct {
	name     string
	baseline Baseline
}

var variants = [...]variantInfo{
	IOCMOS: {"io-cmos", Baseline{Area: 7.65, Perf: ReferencePerf, Freq: 4.2, DynamicPower: 6.14, StaticPower: 1.058, Node: 45, Tech: tech.CMOSHP}},
	O3CMOS: {"o3-cmos", Baseline{Area: 26.48, Perf: 28.48, Freq: 3.7, DynamicPower: 19.83, StaticPower: 5.34, Node: 45, Tech: tech.CMOSHP}},
	IOTFET: {"io-tfet", Baseline{Area: 7.65 / 4, Perf: ReferencePerf * tfetPerfScale, Freq: 4.2 / 1.65, DynamicPower: 0.5, Node: 22, Tech: tech.TFETHomo30}},
	O3TFET: {"o3-tfet", Baseline{Area: 26.48 / 4, Perf: 28.48 * tfetPerfScale, Freq: 3.7 / 1.65, DynamicPower: (19.83 + 5.34) * tfetPowerScale, Node: 22, Tech: tech.TFETHomo30}},
	BigTFET: {"big-tfet", Baseline{Area: 22.125, Perf: 105 / 1.65, Freq: 2.4 / 1.65, DynamicPower: 10.625 / 2.965, Node: 22, Tech: tech.TFETHomo30}},
	SmallFinFET: {"small-finfet", Baseline{Area: 6.392, Perf: 23.3, Freq: 2.4, DynamicPower: 1.12, StaticPower: 0.28, Node: 20, Tech: tech.FinFETHP}},
	BigFinFET:   {"big-finfet", Baseline{Area: 22.125, Perf: 105, Freq: 2.4, DynamicPower: 8.5, StaticPower: 2.125, Node: 20, Tech: tech.FinFETHP}},
}

// Variants returns every predefined core design.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	for i := range variants {
		out[i] = Variant(i)
	}
	return out
}

func (v Variant) String() string {
	if !v.valid() {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variants[v].name
}

func (v Variant) valid() bool {
	return v >= 0 && int(v) < len(variants)
}

// Baseline returns the measured baseline of the variant.
func (v Variant) Baseline() Baseline {
	if !v.valid() {
		return Baseline{}
	}
	return variants[v].baseline
}

// ParseVariant returns the variant with the given name, e.g. "io-cmos".
func ParseVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range variants {
		if info.name == name {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown core variant %q", ErrInvalidParameter, name)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
