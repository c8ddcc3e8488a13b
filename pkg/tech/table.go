package tech

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// No design point runs above vnom*VoltageCeilingNum/VoltageCeilingDen.
const (
	VoltageCeilingNum = 13
	VoltageCeilingDen = 10
)

// minSamples is the smallest curve the monotone cubic fit accepts.
const minSamples = 3

// Table is the dense per-millivolt scaling curve of one node.
type Table struct {
	kind Kind
	node Node

	vmin, vmax, vnom int

	// per-mV scale factors indexed by vdd-vmin, normalized to vnom
	freq []float64
	dp   []float64
	sp   []float64

	// absolute nominal frequency and Monte-Carlo worst case per sigma, nil without MC data
	rawFreq []float64
	mc      map[Sigma][]float64
}

func newTable(kind Kind, node Node, vnom int, samples []sample, mc []mcSample) (*Table, error) {
	dataErr := func(reason string, err error) error {
		return &ModelDataError{Kind: kind, Node: node, Reason: reason, Err: err}
	}
	if len(samples) < minSamples {
		return nil, dataErr(fmt.Sprintf("need at least %d samples, got %d", minSamples, len(samples)), nil)
	}

	xs := make([]float64, len(samples))
	freqs := make([]float64, len(samples))
	dps := make([]float64, len(samples))
	sps := make([]float64, len(samples))
	for i, s := range samples {
		if i > 0 && s.vdd <= samples[i-1].vdd {
			return nil, dataErr(fmt.Sprintf("voltages not strictly increasing at %d mV", s.vdd), nil)
		}
		xs[i] = float64(s.vdd)
		freqs[i] = 1 / s.delay
		dps[i] = s.dp
		sps[i] = s.sp
	}

	t := &Table{
		kind: kind,
		node: node,
		vmin: samples[0].vdd,
		vmax: samples[len(samples)-1].vdd,
		vnom: vnom,
	}
	if vnom < t.vmin || vnom > t.vmax {
		return nil, dataErr(fmt.Sprintf("nominal voltage %d mV outside sampled range [%d, %d]", vnom, t.vmin, t.vmax), nil)
	}

	var err error
	if t.rawFreq, err = denseMonotone(xs, freqs, t.vmin, t.vmax); err != nil {
		return nil, dataErr("frequency fit", err)
	}
	rawDP, err := denseMonotone(xs, dps, t.vmin, t.vmax)
	if err != nil {
		return nil, dataErr("dynamic power fit", err)
	}
	rawSP, err := denseLinear(xs, sps, t.vmin, t.vmax)
	if err != nil {
		return nil, dataErr("static power fit", err)
	}

	// the voltage search assumes every characteristic grows with vdd
	curves := []struct {
		name  string
		curve []float64
	}{{"frequency", t.rawFreq}, {"dynamic power", rawDP}, {"static power", rawSP}}
	for _, c := range curves {
		if v, ok := firstDecrease(c.curve); !ok {
			return nil, dataErr(fmt.Sprintf("%s decreases at %d mV", c.name, t.vmin+v), nil)
		}
	}

	t.freq = normalize(t.rawFreq, vnom-t.vmin)
	t.dp = normalize(rawDP, vnom-t.vmin)
	t.sp = normalize(rawSP, vnom-t.vmin)

	if len(mc) > 0 {
		if err := t.setMonteCarlo(mc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) setMonteCarlo(mc []mcSample) error {
	if mc[0].vdd > t.vmin || mc[len(mc)-1].vdd < t.vmax {
		return &ModelDataError{Kind: t.kind, Node: t.node,
			Reason: fmt.Sprintf("Monte-Carlo range [%d, %d] does not cover [%d, %d]", mc[0].vdd, mc[len(mc)-1].vdd, t.vmin, t.vmax)}
	}
	xs := make([]float64, len(mc))
	for i, s := range mc {
		xs[i] = float64(s.vdd)
	}
	t.mc = make(map[Sigma][]float64, 3)
	for _, sigma := range []Sigma{Sigma1, Sigma2, Sigma3} {
		ys := make([]float64, len(mc))
		for i, s := range mc {
			ys[i] = s.freq[sigma]
		}
		curve, err := denseMonotone(xs, ys, t.vmin, t.vmax)
		if err != nil {
			return &ModelDataError{Kind: t.kind, Node: t.node, Reason: fmt.Sprintf("Monte-Carlo %d-sigma fit", sigma), Err: err}
		}
		t.mc[sigma] = curve
	}
	return nil
}

func denseMonotone(xs, ys []float64, lo, hi int) ([]float64, error) {
	var fb interp.FritschButland
	if err := fb.Fit(xs, ys); err != nil {
		return nil, err
	}
	return dense(&fb, lo, hi), nil
}

func denseLinear(xs, ys []float64, lo, hi int) ([]float64, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return dense(&pl, lo, hi), nil
}

func dense(p interp.Predictor, lo, hi int) []float64 {
	out := make([]float64, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out[v-lo] = p.Predict(float64(v))
	}
	return out
}

func normalize(curve []float64, at int) []float64 {
	ref := curve[at]
	out := make([]float64, len(curve))
	for i, v := range curve {
		out[i] = v / ref
	}
	return out
}

// firstDecrease returns the offset of the first value below its predecessor.
func firstDecrease(curve []float64) (int, bool) {
	for i := 1; i < len(curve); i++ {
		if curve[i] < curve[i-1] {
			return i, false
		}
	}
	return 0, true
}

// Kind returns the technology family of the table.
func (t *Table) Kind() Kind { return t.kind }

// Node returns the technology node of the table.
func (t *Table) Node() Node { return t.node }

// Vmin returns the lowest supported voltage in mV.
func (t *Table) Vmin() int { return t.vmin }

// Vmax returns the highest supported voltage in mV.
func (t *Table) Vmax() int { return t.vmax }

// Vnom returns the nominal voltage in mV.
func (t *Table) Vnom() int { return t.vnom }

// Ceiling returns min(floor(vnom*1.3), vmax), the highest voltage a design may run at.
func (t *Table) Ceiling() int {
	return min(t.vnom*VoltageCeilingNum/VoltageCeilingDen, t.vmax)
}

// Contains reports whether vdd lies within [Vmin, Vmax].
func (t *Table) Contains(vdd int) bool {
	return vdd >= t.vmin && vdd <= t.vmax
}

func (t *Table) index(vdd int) (int, error) {
	if !t.Contains(vdd) {
		return 0, &RangeError{Kind: t.kind, Node: t.node, Vdd: vdd, Min: t.vmin, Max: t.vmax}
	}
	return vdd - t.vmin, nil
}

// FreqScale returns f(vdd)/f(vnom).
func (t *Table) FreqScale(vdd int) (float64, error) {
	i, err := t.index(vdd)
	if err != nil {
		return 0, err
	}
	return t.freq[i], nil
}

// DynamicPowerScale returns dp(vdd)/dp(vnom).
func (t *Table) DynamicPowerScale(vdd int) (float64, error) {
	i, err := t.index(vdd)
	if err != nil {
		return 0, err
	}
	return t.dp[i], nil
}

// StaticPowerScale returns sp(vdd)/sp(vnom).
func (t *Table) StaticPowerScale(vdd int) (float64, error) {
	i, err := t.index(vdd)
	if err != nil {
		return 0, err
	}
	return t.sp[i], nil
}

// HasVariation reports whether Monte-Carlo data was loaded for the node.
func (t *Table) HasVariation() bool {
	return t.mc != nil
}

// VariationPenalty returns the frequency multiplier under process variation,
// blending the nominal curve with the sigma-level worst case:
//
//	(f_nom - mitigation*(f_nom - f_mc)) / f_nom
//
// The result never exceeds 1.
func (t *Table) VariationPenalty(vdd int, sigma Sigma, mitigation float64) (float64, error) {
	if !sigma.Valid() {
		return 0, fmt.Errorf("%w: sigma %d not in {1,2,3}", ErrInvalidVariation, sigma)
	}
	if math.IsNaN(mitigation) || mitigation < 0 || mitigation > 1 {
		return 0, fmt.Errorf("%w: mitigation %g not in [0,1]", ErrInvalidVariation, mitigation)
	}
	if t.mc == nil {
		return 0, &ModelDataError{Kind: t.kind, Node: t.node, Reason: "no Monte-Carlo data"}
	}
	i, err := t.index(vdd)
	if err != nil {
		return 0, err
	}
	fnom := t.rawFreq[i]
	fmc := t.mc[sigma][i]
	penalty := (fnom - mitigation*(fnom-fmc)) / fnom
	return min(penalty, 1), nil
}
