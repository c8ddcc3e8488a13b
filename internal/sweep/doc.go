// Package sweep evaluates grids of heterogeneous chip designs against a
// workload.
//
// A Plan resolves a DesignSweep manifest into immutable model objects and
// expands its allocation ranges into one HeteroJob per design point. The
// Runner feeds jobs through bounded task and result channels to a fixed
// number of workers. Every job yields exactly one Result, including jobs
// that fail, panic or are never started because the context was cancelled.
package sweep
