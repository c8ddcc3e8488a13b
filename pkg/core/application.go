package core

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// coverageTolerance absorbs rounding when coverages add up to exactly f.
const coverageTolerance = 1e-12

// Application is a program with a parallel fraction F, part of which is
// covered by accelerable kernels. The sum of kernel coverages never exceeds F.
type Application struct {
	name     string
	f        float64
	coverage map[string]float64
	memory   *MemoryProfile
}

// NewApplication returns an application without kernels.
func NewApplication(name string, f float64) (*Application, error) {
	if !unitInterval(f) {
		return nil, fmt.Errorf("%w: parallel fraction %g not in [0,1]", ErrInvalidParameter, f)
	}
	return &Application{name: name, f: f, coverage: make(map[string]float64)}, nil
}

func unitInterval(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}

// Name returns the application name.
func (a *Application) Name() string { return a.name }

// F returns the parallel fraction.
func (a *Application) F() float64 { return a.f }

// TotalCoverage returns the sum of kernel coverages.
func (a *Application) TotalCoverage() float64 {
	sum := 0.0
	for _, k := range a.Kernels() {
		sum += a.coverage[k]
	}
	return sum
}

// FNoAcc returns the parallel fraction not covered by any kernel.
func (a *Application) FNoAcc() float64 {
	return max(a.f-a.TotalCoverage(), 0)
}

// Kernels returns the kernel names in sorted order.
func (a *Application) Kernels() []string {
	return slices.Sorted(maps.Keys(a.coverage))
}

// Coverage returns the coverage of kernel.
func (a *Application) Coverage(kernel string) (float64, bool) {
	c, ok := a.coverage[kernel]
	return c, ok
}

// CoverageMap returns a copy of the kernel coverage map.
func (a *Application) CoverageMap() map[string]float64 {
	return maps.Clone(a.coverage)
}

// AddKernel registers kernel with coverage cov. It fails, leaving the
// application unchanged, if the kernel is already present or cov exceeds FNoAcc.
func (a *Application) AddKernel(kernel string, cov float64) error {
	if kernel == "" {
		return fmt.Errorf("%w: kernel name is empty", ErrInvalidParameter)
	}
	if !unitInterval(cov) {
		return fmt.Errorf("%w: coverage %g not in [0,1]", ErrInvalidParameter, cov)
	}
	if _, exists := a.coverage[kernel]; exists {
		return fmt.Errorf("%w: %s in application %s", ErrDuplicateKernel, kernel, a.name)
	}
	if free := a.f - a.TotalCoverage(); cov > free+coverageTolerance {
		return fmt.Errorf("%w: coverage %g of %s exceeds remaining parallel fraction %g",
			ErrCoverageExceeded, cov, kernel, free)
	}
	a.coverage[kernel] = cov
	return nil
}

// SetCoverage updates the coverage of a registered kernel. It fails, leaving
// the application unchanged, if the new total would exceed F.
func (a *Application) SetCoverage(kernel string, cov float64) error {
	old, ok := a.coverage[kernel]
	if !ok {
		return fmt.Errorf("%w: %s in application %s", ErrUnknownKernel, kernel, a.name)
	}
	if !unitInterval(cov) {
		return fmt.Errorf("%w: coverage %g not in [0,1]", ErrInvalidParameter, cov)
	}
	if free := a.f - a.TotalCoverage() + old; cov > free+coverageTolerance {
		return fmt.Errorf("%w: coverage %g of %s exceeds remaining parallel fraction %g",
			ErrCoverageExceeded, cov, kernel, free)
	}
	a.coverage[kernel] = cov
	return nil
}

// RemoveKernel drops a registered kernel.
func (a *Application) RemoveKernel(kernel string) error {
	if _, ok := a.coverage[kernel]; !ok {
		return fmt.Errorf("%w: %s in application %s", ErrUnknownKernel, kernel, a.name)
	}
	delete(a.coverage, kernel)
	return nil
}

// Clone returns an independent copy.
func (a *Application) Clone() *Application {
	c := &Application{name: a.name, f: a.f, coverage: maps.Clone(a.coverage)}
	if a.memory != nil {
		m := *a.memory
		c.memory = &m
	}
	return c
}

// Tag returns a compact label "<accelerated%>-<kernel>-<cov%>-..." with
// truncated integer percentages.
func (a *Application) Tag() string {
	parts := []string{strconv.Itoa(percent(a.TotalCoverage()))}
	for _, k := range a.Kernels() {
		parts = append(parts, k, strconv.Itoa(percent(a.coverage[k])))
	}
	return strings.Join(parts, "-")
}

func percent(v float64) int {
	// nudge values like 0.29*100 = 28.999999999999996 onto the integer
	return int(v*100 + 1e-9)
}

func (a *Application) String() string {
	return fmt.Sprintf("%s(f=%g, %s)", a.name, a.f, a.Tag())
}
