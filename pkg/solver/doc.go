// Package solver estimates the speedup of a heterogeneous chip.
//
// A System combines a budget, a throughput core, an optional dedicated serial
// core, fixed-function accelerators and an optional general-purpose
// accelerator. Evaluate runs the dim-silicon optimization:
//
//  1. Capacity: area left after accelerators bounds the core count
//  2. Voltage search: for each core count, binary search over integer mV for
//     the highest voltage whose total power fits the power budget
//  3. Core count: keep the count with the highest aggregate throughput,
//     stopping once the power budget cannot sustain the requested count
//  4. Aggregation: combine serial, parallel and accelerated segments with
//     Amdahl's law
//
// EvaluateDark is the dark-silicon baseline that runs cores at the voltage
// ceiling and leaves unpowered area dark. EvaluateAtVdd evaluates one fixed
// voltage.
//
// All performance values in a Result are relative to core.ReferencePerf.
//
// Example usage:
//
//	sys, err := solver.NewSystemBuilder().
//		WithBudget(core.SysLarge).
//		WithCore(c).
//		WithRegistry(core.DefaultKernelRegistry()).
//		Build()
//	if err := sys.SetASIC("MMM", "mmm0", 0.1); err != nil { ... }
//	res, err := sys.Evaluate(app)
//
// A System is not safe for concurrent use; sweeps build one per job.
package solver
