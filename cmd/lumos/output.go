package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/config"
	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/solver"
)

// evalRow is the printed form of one application result.
type evalRow struct {
	Application string             `json:"application"`
	F           float64            `json:"f"`
	Mode        solver.Mode        `json:"mode"`
	Perf        float64            `json:"perf"`
	CoreNum     int                `json:"coreNum"`
	Vdd         int                `json:"vdd"`
	SerialPerf  float64            `json:"serialPerf"`
	DimPerf     float64            `json:"dimPerf"`
	KernelPerf  map[string]float64 `json:"kernelPerf,omitempty"`
	Targets     map[string]string  `json:"targets,omitempty"`
	Degraded    bool               `json:"degraded,omitempty"`
}

func newEvalRow(app *core.Application, res solver.Result) evalRow {
	row := evalRow{
		Application: app.Name(),
		F:           app.F(),
		Mode:        res.Mode,
		Perf:        res.Perf,
		CoreNum:     res.CoreNum,
		Vdd:         res.Vdd,
		SerialPerf:  res.SerialPerf,
		DimPerf:     res.DimPerf,
		Degraded:    res.Degraded,
	}
	if len(res.KernelPerf) > 0 {
		row.KernelPerf = res.KernelPerf
		row.Targets = make(map[string]string, len(res.KernelTarget))
		for k, t := range res.KernelTarget {
			row.Targets[k] = string(t)
		}
	}
	return row
}

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	return t
}

func sortedStrings(s []string) []string {
	slices.Sort(s)
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func printEval(out io.Writer, format string, rows []evalRow) error {
	switch format {
	case config.OutputJSON:
		return writeJSON(out, rows)
	case config.OutputYAML:
		return writeYAML(out, rows)
	}
	t := newTable(out, "Evaluation")
	t.AppendHeader(table.Row{"Application", "F", "Mode", "Speedup", "Cores", "Vdd (mV)", "Serial", "Parallel", "Kernels", "Degraded"})
	for _, r := range rows {
		kernels := ""
		for _, k := range sortedStrings(keys(r.KernelPerf)) {
			if kernels != "" {
				kernels += " "
			}
			kernels += fmt.Sprintf("%s@%s=%s", k, r.Targets[k], formatFloat(r.KernelPerf[k]))
		}
		t.AppendRow(table.Row{r.Application, r.F, string(r.Mode), formatFloat(r.Perf), r.CoreNum, r.Vdd,
			formatFloat(r.SerialPerf), formatFloat(r.DimPerf), kernels, r.Degraded})
	}
	t.Render()
	return nil
}

func printSweep(out io.Writer, format string, ds *v1alpha1.DesignSweep, records []v1alpha1.SweepRecord) error {
	switch format {
	case config.OutputJSON:
		return writeJSON(out, struct {
			Status  v1alpha1.DesignSweepStatus `json:"status"`
			Records []v1alpha1.SweepRecord     `json:"records"`
		}{ds.Status, records})
	case config.OutputYAML:
		return writeYAML(out, struct {
			Status  v1alpha1.DesignSweepStatus `json:"status"`
			Records []v1alpha1.SweepRecord     `json:"records"`
		}{ds.Status, records})
	}
	t := newTable(out, fmt.Sprintf("Sweep %s (run %s)", ds.Name, ds.Status.RunID))
	t.AppendHeader(table.Row{"Acc %", "ASIC %", "GP ratio", "Cores", "Vdd (mV)", "Mean", "GMean", "HMean", "Min", "Max", "Error"})
	for _, r := range records {
		t.AppendRow(table.Row{r.AreaPercent, r.ASICSharePercent, formatFloat(r.GPAreaRatio), r.CoreNum, r.Vdd,
			formatFloat(r.Stats.Mean), formatFloat(r.Stats.GeoMean), formatFloat(r.Stats.HarmonicMean),
			formatFloat(r.Stats.Min), formatFloat(r.Stats.Max), r.Error})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "", "completed", ds.Status.Completed, fmt.Sprintf("failed %d", ds.Status.Failed)})
	t.Render()
	if best := ds.Status.Best; best != nil {
		fmt.Fprintf(out, "Best: %d%% accelerators, %d%% ASIC share, mean speedup %s\n",
			best.AreaPercent, best.ASICSharePercent, formatFloat(best.Stats.Mean))
	}
	return nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(out io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
