package core

import (
	"fmt"
	"math"
	"slices"
)

// Task is one kernel invocation of a DAGApplication.
type Task struct {
	Kernel string
	// Length is the run time on a single reference core.
	Length float64
	// Parallel is the fraction of Length that scales over throughput cores
	// when the kernel has no accelerator.
	Parallel float64
}

// DAGApplication is an application made of tasks with precedence
// constraints. Tasks are identified by their index in insertion order and
// may only depend on tasks added before them, so the graph is acyclic.
type DAGApplication struct {
	name  string
	tasks []Task
	preds [][]int
}

// NewDAGApplication returns an empty DAG application.
func NewDAGApplication(name string) (*DAGApplication, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: application needs a name", ErrInvalidParameter)
	}
	return &DAGApplication{name: name}, nil
}

// Name returns the application name.
func (d *DAGApplication) Name() string { return d.name }

// Len returns the number of tasks.
func (d *DAGApplication) Len() int { return len(d.tasks) }

// AddTask appends a task and returns its index.
func (d *DAGApplication) AddTask(t Task) (int, error) {
	if t.Kernel == "" {
		return 0, fmt.Errorf("%w: task needs a kernel", ErrInvalidParameter)
	}
	if !(t.Length > 0) || math.IsInf(t.Length, 0) {
		return 0, fmt.Errorf("%w: task %s length %g must be positive", ErrInvalidParameter, t.Kernel, t.Length)
	}
	if !unitInterval(t.Parallel) {
		return 0, fmt.Errorf("%w: task %s parallel fraction %g not in [0,1]", ErrInvalidParameter, t.Kernel, t.Parallel)
	}
	d.tasks = append(d.tasks, t)
	d.preds = append(d.preds, nil)
	return len(d.tasks) - 1, nil
}

// AddDependency makes task to wait for task from.
func (d *DAGApplication) AddDependency(from, to int) error {
	if from < 0 || to >= len(d.tasks) || from >= to {
		return fmt.Errorf("%w: dependency %d -> %d, tasks may only depend on earlier tasks",
			ErrInvalidParameter, from, to)
	}
	if slices.Contains(d.preds[to], from) {
		return nil
	}
	d.preds[to] = append(d.preds[to], from)
	slices.Sort(d.preds[to])
	return nil
}

// Task returns the task at index i.
func (d *DAGApplication) Task(i int) Task { return d.tasks[i] }

// Predecessors returns the tasks i depends on, in index order.
func (d *DAGApplication) Predecessors(i int) []int {
	return slices.Clone(d.preds[i])
}

// TotalLength is the run time of all tasks one after another on a reference core.
func (d *DAGApplication) TotalLength() float64 {
	total := 0.0
	for _, t := range d.tasks {
		total += t.Length
	}
	return total
}

// Depths returns the depth of every task: 1 for tasks without
// predecessors, else one more than the deepest predecessor.
func (d *DAGApplication) Depths() []int {
	depth := make([]int, len(d.tasks))
	for i := range d.tasks {
		depth[i] = 1
		for _, p := range d.preds[i] {
			depth[i] = max(depth[i], depth[p]+1)
		}
	}
	return depth
}

// Depth returns the number of levels, 0 for an empty application.
func (d *DAGApplication) Depth() int {
	depths := d.Depths()
	if len(depths) == 0 {
		return 0
	}
	return slices.Max(depths)
}

// Levels groups task indexes by depth, shallowest first.
func (d *DAGApplication) Levels() [][]int {
	depths := d.Depths()
	levels := make([][]int, d.Depth())
	for i, dep := range depths {
		levels[dep-1] = append(levels[dep-1], i)
	}
	return levels
}

// finishTime returns the completion time of the last task when task i runs
// for runtime(i) and starts once all its predecessors finished.
func (d *DAGApplication) finishTime(runtime func(int) float64) float64 {
	finish := make([]float64, len(d.tasks))
	end := 0.0
	// indexes are a topological order
	for i := range d.tasks {
		start := 0.0
		for _, p := range d.preds[i] {
			start = max(start, finish[p])
		}
		finish[i] = start + runtime(i)
		end = max(end, finish[i])
	}
	return end
}

// CriticalPath is the run time with unlimited parallelism on reference cores.
func (d *DAGApplication) CriticalPath() float64 {
	return d.finishTime(func(i int) float64 { return d.tasks[i].Length })
}

// Speedup returns the critical path speedup when task i runs speedups[i]
// times faster. Tasks missing from speedups keep their length.
func (d *DAGApplication) Speedup(speedups map[int]float64) (float64, error) {
	if len(d.tasks) == 0 {
		return 0, fmt.Errorf("%w: application %s has no tasks", ErrInvalidParameter, d.name)
	}
	for i, su := range speedups {
		if i < 0 || i >= len(d.tasks) {
			return 0, fmt.Errorf("%w: no task %d", ErrInvalidParameter, i)
		}
		if !(su > 0) {
			return 0, fmt.Errorf("%w: task %d speedup %g must be positive", ErrInvalidParameter, i, su)
		}
	}
	runtime := d.finishTime(func(i int) float64 {
		if su, ok := speedups[i]; ok {
			return d.tasks[i].Length / su
		}
		return d.tasks[i].Length
	})
	return d.CriticalPath() / runtime, nil
}
