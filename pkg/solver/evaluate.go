package solver

import (
	"fmt"
	"math"

	"k8s.io/utils/ptr"

	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/pkg/core"
)

// Mode names how the throughput cores were configured.
type Mode string

const (
	// ModeDim runs as many cores as fit at the power-optimal voltage.
	ModeDim Mode = "dim"
	// ModeDark runs cores at the voltage ceiling and leaves the rest dark.
	ModeDark Mode = "dark"
	// ModeFixed runs cores at a caller-selected voltage.
	ModeFixed Mode = "fixed"
)

// Target names where a kernel executed.
type Target string

const (
	TargetCores Target = "cores"
	TargetASIC  Target = "asic"
	TargetGP    Target = "gp"
)

// Result is the speedup estimate of an application on a System.
type Result struct {
	Mode Mode
	// Perf is the end-to-end speedup relative to the reference core.
	Perf float64
	// CoreNum and Vdd describe the active throughput cores.
	CoreNum int
	Vdd     int
	// SerialPerf and DimPerf are the normalized serial and parallel throughput.
	SerialPerf float64
	DimPerf    float64
	// KernelPerf is the normalized throughput each kernel ran at.
	KernelPerf   map[string]float64
	KernelTarget map[string]Target
	Degraded     bool
	Iterations   int
}

// Evaluate returns the dim-silicon speedup of app.
func (s *System) Evaluate(app *core.Application) (Result, error) {
	dim, err := s.OptimalDim()
	if err != nil {
		return Result{}, err
	}
	iterations := 0
	if s.dim != nil {
		for _, p := range s.dim.curve {
			iterations += p.Iterations
		}
	}
	res, err := s.aggregate(app, ModeDim, dim)
	if err != nil {
		return Result{}, err
	}
	res.Iterations = iterations
	return res, nil
}

// EvaluateDark returns the dark-silicon speedup of app: cores run at the
// voltage ceiling and only as many as the power budget allows are active.
func (s *System) EvaluateDark(app *core.Application) (Result, error) {
	point, err := s.fixedPoint(s.core.Ceiling(), nil)
	if err != nil {
		return Result{}, err
	}
	return s.aggregate(app, ModeDark, point)
}

// EvaluateAtVdd returns the speedup of app with cores at vdd. With a memory
// hierarchy configured and a memory profile on app, throughput accounts for
// cache stalls.
func (s *System) EvaluateAtVdd(app *core.Application, vdd int) (Result, error) {
	point, err := s.fixedPoint(vdd, app.MemoryProfile())
	if err != nil {
		return Result{}, err
	}
	return s.aggregate(app, ModeFixed, point)
}

func (s *System) fixedPoint(vdd int, profile *core.MemoryProfile) (DimPoint, error) {
	power, err := s.core.Power(vdd)
	if err != nil {
		return DimPoint{}, err
	}
	cmax := s.MaxCoreNum()
	if cmax < 1 {
		return DimPoint{}, &ConfigurationError{Resource: "area", Requested: s.core.Area(), Available: s.FreeArea(),
			Reason: "no throughput core fits the free area"}
	}
	active := cmax
	if power > 0 {
		active = min(cmax, int(math.Floor(s.budget.Power/power)))
	}
	if active < 1 {
		return DimPoint{}, &ConfigurationError{Resource: "power", Requested: power, Available: s.budget.Power,
			Reason: fmt.Sprintf("no core can be powered at %d mV", vdd)}
	}
	perf, err := s.core.Perf(vdd)
	if err != nil {
		return DimPoint{}, err
	}
	eta := 1.0
	if s.memory != nil && profile != nil {
		freq, err := s.core.Freq(vdd)
		if err != nil {
			return DimPoint{}, err
		}
		freqNom, err := s.core.Freq(s.core.Vnom())
		if err != nil {
			return DimPoint{}, err
		}
		eta = s.memory.Efficiency(*profile, active, freq/freqNom)
	}
	return DimPoint{
		Requested: cmax,
		CoreNum:   active,
		Vdd:       vdd,
		Perf:      float64(active) * perf * eta / s.refPerf,
		Power:     float64(active) * power,
	}, nil
}

// aggregate applies Amdahl's law over the serial part, the uncovered
// parallel part and every kernel, in kernel name order.
func (s *System) aggregate(app *core.Application, mode Mode, dim DimPoint) (Result, error) {
	serialPerf, err := s.serial.Perf(s.serial.Ceiling())
	if err != nil {
		return Result{}, err
	}
	serialPerf /= s.refPerf

	res := Result{
		Mode:         mode,
		CoreNum:      dim.CoreNum,
		Vdd:          dim.Vdd,
		SerialPerf:   serialPerf,
		DimPerf:      dim.Perf,
		KernelPerf:   make(map[string]float64),
		KernelTarget: make(map[string]Target),
		Degraded:     dim.Degraded,
		Iterations:   dim.Iterations,
	}

	inv := (1-app.F())/serialPerf + app.FNoAcc()/dim.Perf
	power := ptr.To(s.budget.Power)
	var bandwidth *float64
	if bw, ok := s.budget.BandwidthAt(s.Node()); ok {
		bandwidth = ptr.To(bw)
	}

	for _, name := range app.Kernels() {
		cov, _ := app.Coverage(name)
		perf, target, err := s.kernelPerf(name, power, bandwidth)
		if err != nil {
			return Result{}, err
		}
		if !(perf > 0) {
			if target != TargetCores {
				s.logger.V(logging.DEBUG).Info("Accelerator has no usable area under the budgets, running kernel on throughput cores",
					"app", app.Name(), "kernel", name, "target", string(target),
					"powerBudget", s.budget.Power, "bandwidthBudget", ptr.Deref(bandwidth, math.Inf(1)))
			}
			perf, target = dim.Perf, TargetCores
		}
		res.KernelPerf[name] = perf
		res.KernelTarget[name] = target
		inv += cov / perf
	}
	res.Perf = 1 / inv

	s.logger.V(logging.DEBUG).Info("Evaluated application",
		"app", app.Name(), "mode", string(mode), "perf", res.Perf,
		"coreNum", res.CoreNum, "vdd", res.Vdd, "degraded", res.Degraded)
	return res, nil
}

// kernelPerf returns the normalized throughput of kernel on its ASIC, else
// the general-purpose accelerator, else the throughput cores (zero perf).
func (s *System) kernelPerf(name string, power, bandwidth *float64) (float64, Target, error) {
	if acc := s.asicFor(name); acc != nil && acc.Area() > 0 {
		return acc.Perf(power, bandwidth) / s.refPerf, TargetASIC, nil
	}
	if s.useGP && s.gp != nil && s.gp.Area() > 0 {
		k, err := s.registry.Get(name)
		if err != nil {
			return 0, "", err
		}
		if s.gp.Supports(k) {
			perf, err := s.gp.Perf(k, power, bandwidth)
			if err != nil {
				return 0, "", err
			}
			return perf / s.refPerf, TargetGP, nil
		}
	}
	return 0, TargetCores, nil
}
