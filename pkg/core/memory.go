package core

import (
	"fmt"
	"math"
)

// MemoryProfile describes how an application stresses the cache hierarchy.
type MemoryProfile struct {
	// MissL1 and MissL2 are the miss rates at the nominal cache sizes.
	MissL1 float64 `json:"missL1" yaml:"missL1"`
	MissL2 float64 `json:"missL2" yaml:"missL2"`
	// AlphaL1 and AlphaL2 are the power-law exponents of miss rate versus cache size.
	AlphaL1 float64 `json:"alphaL1" yaml:"alphaL1"`
	AlphaL2 float64 `json:"alphaL2" yaml:"alphaL2"`
	// CacheL1Nom and CacheL2Nom are the per-core working set sizes in bytes.
	CacheL1Nom float64 `json:"cacheL1Nom" yaml:"cacheL1Nom"`
	CacheL2Nom float64 `json:"cacheL2Nom" yaml:"cacheL2Nom"`
	// RM is the fraction of instructions that access memory.
	RM float64 `json:"rm" yaml:"rm"`
	// CPIExe is the cycles per instruction without memory stalls.
	CPIExe float64 `json:"cpiExe" yaml:"cpiExe"`
}

// Validate checks that the profile is usable.
func (p MemoryProfile) Validate() error {
	if !unitInterval(p.MissL1) || !unitInterval(p.MissL2) || !unitInterval(p.RM) {
		return fmt.Errorf("%w: miss rates and rm must be in [0,1]", ErrInvalidParameter)
	}
	if !(p.CacheL1Nom > 0) || !(p.CacheL2Nom > 0) || !(p.CPIExe > 0) {
		return fmt.Errorf("%w: working set sizes and cpiExe must be positive", ErrInvalidParameter)
	}
	if math.IsNaN(p.AlphaL1) || math.IsNaN(p.AlphaL2) {
		return fmt.Errorf("%w: alpha is NaN", ErrInvalidParameter)
	}
	return nil
}

// SetMemoryProfile attaches a memory profile, nil clears it.
func (a *Application) SetMemoryProfile(p *MemoryProfile) error {
	if p == nil {
		a.memory = nil
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	cp := *p
	a.memory = &cp
	return nil
}

// MemoryProfile returns the attached memory profile or nil.
func (a *Application) MemoryProfile() *MemoryProfile {
	if a.memory == nil {
		return nil
	}
	cp := *a.memory
	return &cp
}
