package core

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/lumos-dse/lumos/pkg/tech"
)

// Budget bounds the resources of a chip.
type Budget struct {
	// Area in mm^2.
	Area float64
	// Power in W.
	Power float64
	// Bandwidth is the available off-chip memory bandwidth per node, in GB/s.
	Bandwidth map[tech.Node]float64
}

// NewBudget returns a validated budget.
func NewBudget(area, power float64, bandwidth map[tech.Node]float64) (Budget, error) {
	b := Budget{Area: area, Power: power, Bandwidth: maps.Clone(bandwidth)}
	if err := b.Validate(); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// Validate checks that every resource is finite and non-negative.
func (b Budget) Validate() error {
	if !nonNegative(b.Area) {
		return fmt.Errorf("%w: area %g", ErrInvalidBudget, b.Area)
	}
	if !nonNegative(b.Power) {
		return fmt.Errorf("%w: power %g", ErrInvalidBudget, b.Power)
	}
	for _, node := range slices.Sorted(maps.Keys(b.Bandwidth)) {
		if bw := b.Bandwidth[node]; !nonNegative(bw) {
			return fmt.Errorf("%w: bandwidth %g at %s", ErrInvalidBudget, bw, node)
		}
	}
	return nil
}

// BandwidthAt returns the bandwidth available at node.
func (b Budget) BandwidthAt(node tech.Node) (float64, bool) {
	bw, ok := b.Bandwidth[node]
	return bw, ok
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Predefined budgets of large, medium and small chips.
var (
	SysLarge = Budget{Area: 200, Power: 120, Bandwidth: map[tech.Node]float64{
		45: 180, 32: 198, 22: 234, 16: 252, 20: 234, 14: 271,
	}}
	SysMedium = Budget{Area: 130, Power: 65, Bandwidth: map[tech.Node]float64{
		45: 117, 32: 129, 22: 152, 16: 164,
	}}
	SysSmall = Budget{Area: 107, Power: 33, Bandwidth: map[tech.Node]float64{
		45: 96, 32: 106, 22: 125, 16: 135,
	}}
	LargeWithIdealBW = Budget{Area: 200, Power: 120, Bandwidth: map[tech.Node]float64{
		45: 1000, 32: 1000, 22: 1000, 16: 1000, 20: 1000, 14: 1000, 10: 1000, 7: 1000,
	}}
)

var predefinedBudgets = map[string]Budget{
	"large":          SysLarge,
	"medium":         SysMedium,
	"small":          SysSmall,
	"large-ideal-bw": LargeWithIdealBW,
}

// PredefinedBudget returns a predefined budget by name.
func PredefinedBudget(name string) (Budget, error) {
	b, ok := predefinedBudgets[name]
	if !ok {
		return Budget{}, fmt.Errorf("%w: unknown predefined budget %q", ErrInvalidBudget, name)
	}
	b.Bandwidth = maps.Clone(b.Bandwidth)
	return b, nil
}

// PredefinedBudgetNames returns the names accepted by PredefinedBudget.
func PredefinedBudgetNames() []string {
	return slices.Sorted(maps.Keys(predefinedBudgets))
}
