// Package tech models how a process technology scales with supply voltage.
//
// Each technology family (planar CMOS high-performance and low-power, FinFET,
// homojunction TFET) ships coarse characterization samples per node: gate
// delay, dynamic power and static power at 50 mV steps. Load converts those
// samples once into dense per-millivolt tables so that lookups during design
// space exploration are O(1).
//
// All scale factors are ratios to the characteristic at the node's nominal
// voltage, so callers multiply a baseline measured at nominal voltage:
//
//	lib, err := tech.DefaultLibrary()
//	table, err := lib.Table(tech.CMOSHP, 22)
//	f, err := table.FreqScale(650) // frequency at 650 mV relative to vnom
//
// A Library is immutable after Load and may be shared between goroutines.
package tech
