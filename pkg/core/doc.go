// Package core provides the hardware and workload models evaluated by the
// design space exploration engine.
//
// This package contains the domain models that describe a heterogeneous chip
// and the applications it runs:
//
//   - Core: a general-purpose core derived from a baseline measured at a
//     reference node, evaluated at an explicit supply voltage
//   - Accelerator: a fixed-function unit bound to one kernel
//   - GPAccelerator: a reconfigurable or throughput unit shared by all kernels
//   - Kernel / KernelRegistry: per accelerator kind speedup coefficients
//   - Application: parallel fraction and kernel coverage
//   - Budget: area, power and per-node memory bandwidth limits
//
// Cores and accelerators are assembled with builders and are immutable once
// built, except for the explicit area update of an Accelerator.
//
// Example usage:
//
//	c, err := core.NewCoreBuilder().
//		WithVariant(core.IOCMOS).
//		WithNode(22).
//		Build()
//	perf, err := c.Perf(c.Vnom())
package core
