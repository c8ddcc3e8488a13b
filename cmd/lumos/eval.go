package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/sweep"
	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/solver"
)

type evalFlags struct {
	inputs     inputFlags
	core       string
	node       int
	serialCore string
	budget     string
	area       float64
	power      float64
	gp         string
	gpArea     float64
	asics      map[string]string
	mode       string
	vdd        int
}

func (a *app) evalCommand() *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one chip design against a workload",
		Example: `  lumos eval --workload apps.yaml --core io-cmos --node 22 --asic MMM=0.1
  lumos eval --workload apps.yaml --gp gpu --gp-area 0.2 --mode dark`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEval(cmd, f)
		},
	}
	f.inputs.register(cmd)
	f.registerDesign(cmd)
	fs := cmd.Flags()
	fs.StringVar(&f.mode, "mode", string(solver.ModeDim), "dim, dark or fixed")
	fs.IntVar(&f.vdd, "vdd", 0, "supply voltage in mV for the fixed mode")
	return cmd
}

// registerDesign adds the flags that describe the chip under evaluation.
func (f *evalFlags) registerDesign(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.core, "core", core.IOCMOS.String(), "throughput core variant")
	fs.IntVar(&f.node, "node", 0, "technology node in nm (default: the core's own node)")
	fs.StringVar(&f.serialCore, "serial-core", "", "dedicated serial core variant")
	fs.StringVar(&f.budget, "budget", "large", "predefined budget")
	fs.Float64Var(&f.area, "area", 0, "area budget in mm^2, overrides the preset")
	fs.Float64Var(&f.power, "power", 0, "power budget in W, overrides the preset")
	fs.StringVar(&f.gp, "gp", "", "general-purpose accelerator kind: fpga or gpu")
	fs.Float64Var(&f.gpArea, "gp-area", 0, "fraction of chip area given to the general-purpose accelerator")
	fs.StringToStringVar(&f.asics, "asic", nil, "fraction of chip area given to a kernel's ASIC, as KERNEL=RATIO")
}

func (f *evalFlags) system(a *app, registry *core.KernelRegistry) (*solver.System, error) {
	bspec := v1alpha1.BudgetSpec{Preset: f.budget}
	if f.area > 0 {
		bspec.Area = ptr.To(f.area)
	}
	if f.power > 0 {
		bspec.Power = ptr.To(f.power)
	}
	budget, err := sweep.ResolveBudget(bspec)
	if err != nil {
		return nil, err
	}
	c, err := sweep.ResolveCore(a.lib, v1alpha1.CoreSpec{Variant: f.core, Node: f.node}, 0)
	if err != nil {
		return nil, err
	}
	b := solver.NewSystemBuilder().WithLibrary(a.lib).WithBudget(budget).WithCore(c).WithRegistry(registry)
	if f.serialCore != "" {
		serial, err := sweep.ResolveCore(a.lib, v1alpha1.CoreSpec{Variant: f.serialCore}, c.Node())
		if err != nil {
			return nil, err
		}
		b = b.WithSerialCore(serial)
	}
	if f.gp != "" {
		kind, err := core.ParseAcceleratorKind(f.gp)
		if err != nil {
			return nil, err
		}
		b = b.WithGPAccelerator(kind, f.gpArea)
	}
	sys, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, kernel := range slices.Sorted(maps.Keys(f.asics)) {
		ratio, err := strconv.ParseFloat(f.asics[kernel], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ASIC area ratio for %s: %w", kernel, err)
		}
		if err := sys.SetASIC(kernel, "asic-"+kernel, ratio); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

func (a *app) runEval(cmd *cobra.Command, f *evalFlags) error {
	mode := solver.Mode(f.mode)
	switch mode {
	case solver.ModeDim, solver.ModeDark:
	case solver.ModeFixed:
		if f.vdd <= 0 {
			return fmt.Errorf("--vdd is required in the fixed mode")
		}
	default:
		return fmt.Errorf("unsupported mode %q", f.mode)
	}

	src, err := a.source(f.inputs)
	if err != nil {
		return err
	}
	registry, workload, err := load(cmd, src)
	if err != nil {
		return err
	}
	sys, err := f.system(a, registry)
	if err != nil {
		return err
	}

	rows := make([]evalRow, 0, len(workload))
	for _, application := range workload {
		var res solver.Result
		switch mode {
		case solver.ModeDark:
			res, err = sys.EvaluateDark(application)
		case solver.ModeFixed:
			res, err = sys.EvaluateAtVdd(application, f.vdd)
		default:
			res, err = sys.Evaluate(application)
		}
		if err != nil {
			return fmt.Errorf("evaluating %s: %w", application.Name(), err)
		}
		rows = append(rows, newEvalRow(application, res))
	}
	return printEval(a.out, a.cfg.Output.Format, rows)
}
