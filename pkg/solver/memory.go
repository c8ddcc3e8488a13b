package solver

import (
	"fmt"
	"math"

	"github.com/lumos-dse/lumos/pkg/core"
)

// MemoryHierarchy is a two-level cache in front of main memory. Delays are in
// core cycles at nominal frequency and sizes in bytes.
type MemoryHierarchy struct {
	DelayL1  float64 `json:"delayL1" yaml:"delayL1"`
	DelayL2  float64 `json:"delayL2" yaml:"delayL2"`
	DelayMem float64 `json:"delayMem" yaml:"delayMem"`
	CacheL1  float64 `json:"cacheL1" yaml:"cacheL1"`
	CacheL2  float64 `json:"cacheL2" yaml:"cacheL2"`
}

// DefaultMemoryHierarchy has a 64KB L1 and a shared 32MB L2.
var DefaultMemoryHierarchy = MemoryHierarchy{
	DelayL1:  3,
	DelayL2:  20,
	DelayMem: 426,
	CacheL1:  65536,
	CacheL2:  33554432,
}

// Validate checks that delays and sizes are positive.
func (h MemoryHierarchy) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"delayL1", h.DelayL1}, {"delayL2", h.DelayL2}, {"delayMem", h.DelayMem},
		{"cacheL1", h.CacheL1}, {"cacheL2", h.CacheL2},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("memory hierarchy %s must be positive, got %g", f.name, f.value)
		}
	}
	return nil
}

// Efficiency returns the fraction of peak throughput left after memory
// stalls, for cnum cores sharing the L2 at freqRatio = f(vdd)/f(vnom).
// Miss rates follow a power law in cache size relative to the working set.
func (h MemoryHierarchy) Efficiency(p core.MemoryProfile, cnum int, freqRatio float64) float64 {
	missL1 := math.Min(1, p.MissL1*math.Pow(h.CacheL1/p.CacheL1Nom, 1-p.AlphaL1))
	missL2 := math.Min(1, p.MissL2*math.Pow(h.CacheL2/(float64(cnum)*p.CacheL2Nom), 1-p.AlphaL2))
	t0 := (1-missL1)*h.DelayL1 + missL1*(1-missL2)*h.DelayL2 + missL1*missL2*h.DelayMem
	t := t0 * freqRatio
	return 1 / (1 + t*p.RM/p.CPIExe)
}
