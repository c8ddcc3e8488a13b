// Package config holds the serializable forms of kernel suites and
// workloads, and builds them into pkg/core values.
//
// A suite lists kernels with their per-accelerator coefficients and the
// probability that a kernel occurs in a generated application:
//
//	kernels:
//	- name: MMM
//	  occur: 0.5
//	  accelerators:
//	    asic: {miu: 27.4, phi: 0.79, bandwidth: 3.62}
//	    gpu:  {miu: 3.41, phi: 0.74, bandwidth: 0.725}
//
// A workload lists applications with their parallel fraction and kernel
// coverages:
//
//	applications:
//	- name: app0
//	  f: 1
//	  kernels:
//	    MMM: 0.4
//
// Workloads can be generated from a suite with GenerateWorkload, which draws
// the total kernel coverage of each application from a normal, lognormal or
// uniform distribution.
package config
