package solver

import (
	"fmt"
	"math"

	"github.com/lumos-dse/lumos/internal/logging"
)

// DimPoint is the outcome of the voltage search for one requested core count.
type DimPoint struct {
	// Requested is the core count the search was run for.
	Requested int
	// CoreNum is the number of active cores, below Requested only when degraded.
	CoreNum int
	// Vdd is the selected supply voltage in mV.
	Vdd int
	// Perf is CoreNum times the per-core performance at Vdd, normalized.
	Perf float64
	// Power is the total power of the active cores at Vdd.
	Power float64
	// Degraded is set when the power budget could not sustain Requested cores at Vmin.
	Degraded bool
	// Iterations counts the power feasibility tests of the binary search.
	Iterations int
}

type dimSweep struct {
	best  DimPoint
	curve []DimPoint
}

// feasible reports whether cnum cores fit power at vdd.
func (s *System) feasible(cnum int, vdd int, power float64) (bool, error) {
	p, err := s.core.Power(vdd)
	if err != nil {
		return false, err
	}
	return float64(cnum)*p <= power, nil
}

// DimPerfAt finds the highest voltage in [Vmin, Ceiling] at which cnum cores
// fit the power budget. When even Vmin is infeasible the active count is
// clamped to what Vmin can power and the point is marked degraded.
func (s *System) DimPerfAt(cnum int) (DimPoint, error) {
	return s.dimPerfAt(cnum, s.budget.Power)
}

func (s *System) dimPerfAt(cnum int, power float64) (DimPoint, error) {
	cmax := s.MaxCoreNum()
	if cnum < 1 || cnum > cmax {
		return DimPoint{}, &ConfigurationError{Resource: "cores", Requested: float64(cnum), Available: float64(cmax),
			Reason: "core count outside area capacity"}
	}
	lo, hi := s.core.Vmin(), s.core.Ceiling()
	point := DimPoint{Requested: cnum, CoreNum: cnum}

	ok, err := s.feasible(cnum, hi, power)
	if err != nil {
		return DimPoint{}, err
	}
	point.Iterations++
	switch {
	case ok:
		point.Vdd = hi
	default:
		ok, err = s.feasible(cnum, lo, power)
		if err != nil {
			return DimPoint{}, err
		}
		point.Iterations++
		if !ok {
			return s.degraded(point, lo, power)
		}
		// lo is feasible, hi is not
		for hi-lo > 1 {
			mid := lo + (hi-lo)/2
			ok, err := s.feasible(cnum, mid, power)
			if err != nil {
				return DimPoint{}, err
			}
			point.Iterations++
			if ok {
				lo = mid
			} else {
				hi = mid
			}
		}
		point.Vdd = lo
	}
	return s.finish(point)
}

func (s *System) degraded(point DimPoint, vmin int, budget float64) (DimPoint, error) {
	power, err := s.core.Power(vmin)
	if err != nil {
		return DimPoint{}, err
	}
	active := min(s.MaxCoreNum(), int(math.Floor(budget/power)))
	if active < 1 {
		return DimPoint{}, &ConfigurationError{Resource: "power", Requested: power, Available: budget,
			Reason: "no core can be powered at minimum voltage"}
	}
	s.logger.Info("Power budget cannot sustain requested cores at minimum voltage, clamping core count",
		"requested", point.Requested, "active", active, "vdd", vmin,
		"corePower", power, "powerBudget", budget)

	point.CoreNum = active
	point.Vdd = vmin
	point.Degraded = true
	return s.finish(point)
}

// finish fills in the throughput and power of point at its voltage.
func (s *System) finish(point DimPoint) (DimPoint, error) {
	perf, err := s.core.Perf(point.Vdd)
	if err != nil {
		return DimPoint{}, err
	}
	power, err := s.core.Power(point.Vdd)
	if err != nil {
		return DimPoint{}, err
	}
	point.Perf = float64(point.CoreNum) * perf / s.refPerf
	point.Power = float64(point.CoreNum) * power
	return point, nil
}

// SweepCoreCount runs the voltage search for every core count from 1 up to
// the area capacity, stopping after the first count the power budget cannot
// sustain at Vmin.
func (s *System) SweepCoreCount() ([]DimPoint, error) {
	sweep, err := s.dimSweep()
	if err != nil {
		return nil, err
	}
	return append([]DimPoint(nil), sweep.curve...), nil
}

// OptimalDim returns the core count and voltage with the highest aggregate
// throughput. The first maximum wins ties.
func (s *System) OptimalDim() (DimPoint, error) {
	sweep, err := s.dimSweep()
	if err != nil {
		return DimPoint{}, err
	}
	return sweep.best, nil
}

// OptimalDimUnder is OptimalDim for a power budget other than the chip's.
// The result is not cached.
func (s *System) OptimalDimUnder(power float64) (DimPoint, error) {
	if !(power > 0) {
		return DimPoint{}, &ConfigurationError{Resource: "power", Requested: power,
			Available: s.budget.Power, Reason: "power budget must be positive"}
	}
	sweep, err := s.sweepUnder(power)
	if err != nil {
		return DimPoint{}, err
	}
	return sweep.best, nil
}

func (s *System) dimSweep() (*dimSweep, error) {
	if s.dim != nil {
		return s.dim, nil
	}
	sweep, err := s.sweepUnder(s.budget.Power)
	if err != nil {
		return nil, err
	}
	s.dim = sweep
	return sweep, nil
}

func (s *System) sweepUnder(power float64) (*dimSweep, error) {
	cmax := s.MaxCoreNum()
	if cmax < 1 {
		return nil, &ConfigurationError{Resource: "area", Requested: s.core.Area(), Available: s.FreeArea(),
			Reason: "no throughput core fits the free area"}
	}

	sweep := &dimSweep{curve: make([]DimPoint, 0, cmax)}
	for cnum := 1; cnum <= cmax; cnum++ {
		point, err := s.dimPerfAt(cnum, power)
		if err != nil {
			return nil, fmt.Errorf("voltage search for %d cores: %w", cnum, err)
		}
		sweep.curve = append(sweep.curve, point)
		if point.Perf > sweep.best.Perf {
			sweep.best = point
		}
		if point.CoreNum < cnum {
			break
		}
	}
	s.logger.V(logging.DEBUG).Info("Core count sweep complete",
		"candidates", len(sweep.curve), "coreNum", sweep.best.CoreNum,
		"vdd", sweep.best.Vdd, "perf", sweep.best.Perf, "powerBudget", power)
	return sweep, nil
}
