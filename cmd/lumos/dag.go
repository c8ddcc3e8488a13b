package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lumos-dse/lumos/internal/config"
	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
	"github.com/lumos-dse/lumos/pkg/solver"
)

const (
	dagSerial   = "serial"
	dagParallel = "parallel"
)

// dagRow is the printed form of one DAG task.
type dagRow struct {
	Task    int     `json:"task"`
	Kernel  string  `json:"kernel"`
	Target  string  `json:"target"`
	Runtime float64 `json:"runtime"`
}

type dagOutput struct {
	Application string   `json:"application"`
	Mode        string   `json:"mode"`
	Speedup     float64  `json:"speedup"`
	Baseline    float64  `json:"baseline"`
	Runtime     float64  `json:"runtime"`
	Warps       int      `json:"warps"`
	Tasks       []dagRow `json:"tasks"`
}

func (a *app) dagCommand() *cobra.Command {
	f := &evalFlags{}
	var mode string
	cmd := &cobra.Command{
		Use:   "dag FILE",
		Short: "Evaluate one chip design against a DAG application",
		Example: `  lumos dag pipeline.yaml --asic MMM=0.1
  lumos dag pipeline.yaml --dag-mode serial --gp fpga --gp-area 0.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDAG(cmd, f, mode, args[0])
		},
	}
	cmd.Flags().StringVar(&f.inputs.suite, "suite", "", "kernel suite YAML file (default: built-in kernels)")
	f.registerDesign(cmd)
	cmd.Flags().StringVar(&mode, "dag-mode", dagParallel, "serial or parallel")
	return cmd
}

func (a *app) runDAG(cmd *cobra.Command, f *evalFlags, mode, path string) error {
	if mode != dagSerial && mode != dagParallel {
		return fmt.Errorf("unsupported DAG mode %q", mode)
	}
	suite, err := config.FileSource{SuitePath: f.inputs.suite}.Suite(cmd.Context())
	if err != nil {
		return err
	}
	registry, err := suite.BuildRegistry()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read DAG application: %w", err)
	}
	spec, err := pkgconfig.ParseDAG(data)
	if err != nil {
		return err
	}
	application, err := pkgconfig.BuildDAG(spec, registry)
	if err != nil {
		return err
	}
	sys, err := f.system(a, registry)
	if err != nil {
		return err
	}

	var res solver.DAGResult
	if mode == dagSerial {
		res, err = sys.EvaluateDAGSerial(application)
	} else {
		res, err = sys.EvaluateDAGParallel(application)
	}
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", application.Name(), err)
	}

	out := dagOutput{
		Application: application.Name(),
		Mode:        mode,
		Speedup:     res.Speedup,
		Baseline:    res.Baseline,
		Runtime:     res.Runtime,
		Warps:       res.Warps,
		Tasks:       make([]dagRow, application.Len()),
	}
	for i := range application.Len() {
		out.Tasks[i] = dagRow{
			Task:    i,
			Kernel:  application.Task(i).Kernel,
			Target:  string(res.Targets[i]),
			Runtime: res.TaskRuntime[i],
		}
	}
	return printDAG(a, out)
}

func printDAG(a *app, out dagOutput) error {
	switch a.cfg.Output.Format {
	case config.OutputJSON:
		return writeJSON(a.out, out)
	case config.OutputYAML:
		return writeYAML(a.out, out)
	}
	t := newTable(a.out, fmt.Sprintf("%s (%s): speedup %s over %d warps", out.Application, out.Mode,
		formatFloat(out.Speedup), out.Warps))
	t.AppendHeader(table.Row{"Task", "Kernel", "Target", "Runtime"})
	for _, r := range out.Tasks {
		t.AppendRow(table.Row{r.Task, r.Kernel, r.Target, formatFloat(r.Runtime)})
	}
	t.Render()
	return nil
}
