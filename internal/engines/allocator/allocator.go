package allocator

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumos-dse/lumos/pkg/core"
)

// Allocator is an interface that defines the method for splitting a share of
// chip area among the ASICs of a set of kernels
type Allocator interface {
	// Allocate returns the fraction of chip area given to each kernel. The
	// fractions add up to areaRatio.
	Allocate(
		ctx context.Context,
		areaRatio float64,
		kernels []string,
		workload []*core.Application,
	) (map[string]float64, error)
}

// Strategy is an enumeration of the different strategies that can be used by the Allocator
type Strategy int

// enumeration of Strategy
const (
	EvenStrategy Strategy = iota
	CoverageWeightedStrategy
)

var strategyNames = [...]string{
	EvenStrategy:             "even",
	CoverageWeightedStrategy: "coverage-weighted",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy returns the strategy with the given name. The empty name selects EvenStrategy.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EvenStrategy, nil
	}
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unsupported allocation strategy: %q", name)
}

// NewAllocator is a factory that creates a new Allocator based on the provided strategy
func NewAllocator(strategy Strategy) (Allocator, error) {
	switch strategy {
	case EvenStrategy:
		return &EvenAllocator{}, nil
	case CoverageWeightedStrategy:
		return &CoverageWeightedAllocator{}, nil
	default:
		return nil, fmt.Errorf("unsupported allocation strategy: %v", strategy)
	}
}
