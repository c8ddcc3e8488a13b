package tech

import (
	"fmt"
	"slices"
)

// NodeScale holds the nominal characteristics of a node relative to the
// oldest node of its family.
type NodeScale struct {
	// Vnom is the nominal supply voltage in mV.
	Vnom         int
	Area         float64
	Perf         float64
	Freq         float64
	DynamicPower float64
	StaticPower  float64
}

// Ratio is the multiplicative change of nominal characteristics when a
// design is moved from one node to another.
type Ratio struct {
	Area         float64
	Perf         float64
	Freq         float64
	DynamicPower float64
	StaticPower  float64
}

// Identity is the ratio between a node and itself.
var Identity = Ratio{Area: 1, Perf: 1, Freq: 1, DynamicPower: 1, StaticPower: 1}

var nodeScales = map[Kind]map[Node]NodeScale{
	CMOSHP: {
		45: {Vnom: 1000, Area: 1, Perf: 1, Freq: 1, DynamicPower: 1, StaticPower: 1},
		32: {Vnom: 900, Area: 0.5, Perf: 1.1, Freq: 1.095, DynamicPower: 0.6, StaticPower: 1.2},
		22: {Vnom: 800, Area: 0.25, Perf: 1.21, Freq: 1.2, DynamicPower: 0.35, StaticPower: 1.4},
		16: {Vnom: 700, Area: 0.125, Perf: 1.331, Freq: 1.28, DynamicPower: 0.2, StaticPower: 1.6},
	},
	CMOSLP: {
		45: {Vnom: 1100, Area: 1, Perf: 1, Freq: 1, DynamicPower: 1, StaticPower: 1},
		32: {Vnom: 1000, Area: 0.5, Perf: 1.1, Freq: 0.974, DynamicPower: 0.5265, StaticPower: 1.544},
		22: {Vnom: 950, Area: 0.25, Perf: 1.21, Freq: 0.749, DynamicPower: 0.2285, StaticPower: 3.4},
		16: {Vnom: 900, Area: 0.125, Perf: 1.331, Freq: 0.648, DynamicPower: 0.1216, StaticPower: 7.646},
	},
	FinFETHP: {
		20: {Vnom: 900, Area: 1, Perf: 1, Freq: 1, DynamicPower: 1, StaticPower: 1},
		16: {Vnom: 850, Area: 0.53, Perf: 1.5493, Freq: 1.5493, DynamicPower: 0.9606, StaticPower: 0.8515},
		14: {Vnom: 800, Area: 0.4, Perf: 2.2967, Freq: 2.2967, DynamicPower: 0.9164, StaticPower: 0.7015},
		10: {Vnom: 750, Area: 0.25, Perf: 2.6215, Freq: 2.6215, DynamicPower: 0.7731, StaticPower: 0.6023},
		7:  {Vnom: 700, Area: 0.1225, Perf: 3.0719, Freq: 3.0719, DynamicPower: 0.6086, StaticPower: 0.4719},
	},
	TFETHomo30: {
		45: {Vnom: 1000, Area: 1, Perf: 1, Freq: 1, DynamicPower: 1, StaticPower: 1},
		32: {Vnom: 900, Area: 0.5, Perf: 1.1, Freq: 0.95, DynamicPower: 0.492, StaticPower: 0.306},
		22: {Vnom: 400, Area: 0.25, Perf: 1.21, Freq: 0.7945, DynamicPower: 0.206, StaticPower: 0.122},
		16: {Vnom: 350, Area: 0.125, Perf: 1.331, Freq: 0.664, DynamicPower: 0.092, StaticPower: 0.131},
	},
}

// ScaleOf returns the nominal scale of node within family kind.
func ScaleOf(kind Kind, node Node) (NodeScale, error) {
	scales, ok := nodeScales[kind]
	if !ok {
		return NodeScale{}, &ModelDataError{Kind: kind, Node: node, Reason: "unknown technology family"}
	}
	s, ok := scales[node]
	if !ok {
		return NodeScale{}, &ModelDataError{Kind: kind, Node: node, Reason: "node not characterized"}
	}
	return s, nil
}

// RatioOf returns the scaling ratio from node ref to node of family kind.
// Moving a design to its own node yields Identity exactly.
func RatioOf(kind Kind, ref, node Node) (Ratio, error) {
	from, err := ScaleOf(kind, ref)
	if err != nil {
		return Ratio{}, err
	}
	to, err := ScaleOf(kind, node)
	if err != nil {
		return Ratio{}, err
	}
	if ref == node {
		return Identity, nil
	}
	return Ratio{
		Area:         to.Area / from.Area,
		Perf:         to.Perf / from.Perf,
		Freq:         to.Freq / from.Freq,
		DynamicPower: to.DynamicPower / from.DynamicPower,
		StaticPower:  to.StaticPower / from.StaticPower,
	}, nil
}

// ScaledNodes returns the nodes with a nominal scale for kind, oldest first.
func ScaledNodes(kind Kind) []Node {
	nodes := make([]Node, 0, len(nodeScales[kind]))
	for n := range nodeScales[kind] {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	slices.Reverse(nodes)
	return nodes
}

func (r Ratio) String() string {
	return fmt.Sprintf("area=%.4g perf=%.4g freq=%.4g dp=%.4g sp=%.4g",
		r.Area, r.Perf, r.Freq, r.DynamicPower, r.StaticPower)
}
