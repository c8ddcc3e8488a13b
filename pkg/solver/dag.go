package solver

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"k8s.io/utils/ptr"

	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/pkg/core"
)

// warpSlack is the remaining power in W below which a warp of concurrent
// tasks is closed.
const warpSlack = 0.1

// DAGResult is the speedup estimate of a DAG application.
type DAGResult struct {
	// Speedup is Baseline over Runtime.
	Speedup float64
	// Baseline is the run time of all tasks in sequence on a reference core.
	Baseline float64
	Runtime  float64
	// Warps counts the groups of tasks that ran concurrently.
	Warps int
	// Targets holds where each task ran, by task index.
	Targets []Target
	// TaskRuntime holds the run time of each task, by task index.
	TaskRuntime []float64
}

func (s *System) checkTasks(app *core.DAGApplication) error {
	if app.Len() == 0 {
		return fmt.Errorf("%w: application %s has no tasks", core.ErrInvalidParameter, app.Name())
	}
	for i := range app.Len() {
		if _, err := s.registry.Get(app.Task(i).Kernel); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

func (s *System) bandwidthBudget() *float64 {
	if bw, ok := s.budget.BandwidthAt(s.Node()); ok {
		return ptr.To(bw)
	}
	return nil
}

// acceleratorRun returns the normalized perf and power of kernel on its
// accelerator under power. Zero perf means the kernel runs on the cores.
func (s *System) acceleratorRun(kernel string, power float64) (float64, Target, float64, error) {
	bandwidth := s.bandwidthBudget()
	perf, target, err := s.kernelPerf(kernel, ptr.To(power), bandwidth)
	if err != nil || target == TargetCores || !(perf > 0) {
		return 0, TargetCores, 0, err
	}
	var used float64
	switch target {
	case TargetASIC:
		used = s.asicFor(kernel).EffectivePower(ptr.To(power), bandwidth)
	case TargetGP:
		k, err := s.registry.Get(kernel)
		if err != nil {
			return 0, "", 0, err
		}
		if used, err = s.gp.EffectivePower(k, ptr.To(power), bandwidth); err != nil {
			return 0, "", 0, err
		}
	}
	return perf, target, used, nil
}

// coreRuntime is the run time of t on throughput cores configured as dim:
// the serial part on one of them, the parallel part on all.
func (s *System) coreRuntime(t core.Task, dim DimPoint) (float64, error) {
	single, err := s.core.Perf(dim.Vdd)
	if err != nil {
		return 0, err
	}
	single /= s.refPerf
	return t.Length*(1-t.Parallel)/single + t.Length*t.Parallel/dim.Perf, nil
}

// EvaluateDAGSerial runs the tasks of app one after another. Each task uses
// its accelerator when there is one. Otherwise a fully serial task runs on the
// serial core and the others on the throughput cores at the optimal dim point.
func (s *System) EvaluateDAGSerial(app *core.DAGApplication) (DAGResult, error) {
	if err := s.checkTasks(app); err != nil {
		return DAGResult{}, err
	}
	dim, err := s.OptimalDim()
	if err != nil {
		return DAGResult{}, err
	}
	serialPerf, err := s.serial.Perf(s.serial.Ceiling())
	if err != nil {
		return DAGResult{}, err
	}
	serialPerf /= s.refPerf

	res := DAGResult{
		Baseline:    app.TotalLength(),
		Warps:       app.Len(),
		Targets:     make([]Target, app.Len()),
		TaskRuntime: make([]float64, app.Len()),
	}
	for i := range app.Len() {
		t := app.Task(i)
		perf, target, _, err := s.acceleratorRun(t.Kernel, s.budget.Power)
		if err != nil {
			return DAGResult{}, err
		}
		var rt float64
		switch {
		case target != TargetCores:
			rt = t.Length / perf
		case t.Parallel == 0:
			rt = t.Length / serialPerf
		default:
			if rt, err = s.coreRuntime(t, dim); err != nil {
				return DAGResult{}, err
			}
		}
		res.Targets[i] = target
		res.TaskRuntime[i] = rt
		res.Runtime += rt
	}
	res.Speedup = res.Baseline / res.Runtime
	s.logger.V(logging.DEBUG).Info("Evaluated DAG application serially",
		"app", app.Name(), "speedup", res.Speedup, "runtime", res.Runtime)
	return res, nil
}

// EvaluateDAGParallel runs the tasks of each depth level concurrently and
// hands out the power budget greedily, longest task first. An accelerator
// takes the power it draws under the remaining budget; cores take the power of
// their optimal dim point under it. When the remaining budget drops below
// 0.1W, or cannot power a single core, the running warp is closed and the
// next one starts with the full budget. A level costs the sum of its warps,
// each as long as its slowest task.
func (s *System) EvaluateDAGParallel(app *core.DAGApplication) (DAGResult, error) {
	if err := s.checkTasks(app); err != nil {
		return DAGResult{}, err
	}
	logger := s.logger.WithValues("app", app.Name())
	res := DAGResult{
		Baseline:    app.TotalLength(),
		Targets:     make([]Target, app.Len()),
		TaskRuntime: make([]float64, app.Len()),
	}

	var warp []float64
	budget := s.budget.Power
	closeWarp := func() {
		if len(warp) == 0 {
			return
		}
		longest := slices.Max(warp)
		logger.V(logging.TRACE).Info("Warp finished", "tasks", len(warp), "runtime", longest)
		res.Runtime += longest
		res.Warps++
		warp = warp[:0]
		budget = s.budget.Power
	}

	for depth, level := range app.Levels() {
		order := slices.Clone(level)
		slices.SortStableFunc(order, func(a, b int) int {
			return cmp.Compare(app.Task(b).Length, app.Task(a).Length)
		})
		for _, i := range order {
			t := app.Task(i)
			rt, target, used, err := s.parallelTask(t, budget)
			var cfgErr *ConfigurationError
			if errors.As(err, &cfgErr) && cfgErr.Resource == "power" && len(warp) > 0 {
				// retry with the full budget in a new warp
				closeWarp()
				rt, target, used, err = s.parallelTask(t, budget)
			}
			if err != nil {
				return DAGResult{}, fmt.Errorf("task %d (%s) at depth %d: %w", i, t.Kernel, depth+1, err)
			}
			res.Targets[i] = target
			res.TaskRuntime[i] = rt
			warp = append(warp, rt)
			budget -= used
			if budget <= warpSlack {
				closeWarp()
			}
		}
		closeWarp()
	}
	res.Speedup = res.Baseline / res.Runtime
	logger.V(logging.DEBUG).Info("Evaluated DAG application in parallel",
		"speedup", res.Speedup, "runtime", res.Runtime, "warps", res.Warps)
	return res, nil
}

func (s *System) parallelTask(t core.Task, budget float64) (float64, Target, float64, error) {
	perf, target, used, err := s.acceleratorRun(t.Kernel, budget)
	if err != nil {
		return 0, "", 0, err
	}
	if target != TargetCores {
		return t.Length / perf, target, used, nil
	}
	dim, err := s.OptimalDimUnder(budget)
	if err != nil {
		return 0, "", 0, err
	}
	rt, err := s.coreRuntime(t, dim)
	if err != nil {
		return 0, "", 0, err
	}
	return rt, TargetCores, dim.Power, nil
}
