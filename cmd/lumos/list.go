package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lumos-dse/lumos/internal/config"
	"github.com/lumos-dse/lumos/pkg/core"
)

func (a *app) listCommand() *cobra.Command {
	var suitePath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List core variants, predefined budgets and kernels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suite, err := config.FileSource{SuitePath: suitePath}.Suite(cmd.Context())
			if err != nil {
				return err
			}

			cores := newTable(a.out, "Core variants")
			cores.AppendHeader(table.Row{"Variant", "Tech", "Node", "Area (mm^2)", "Perf", "Freq (GHz)"})
			for _, v := range core.Variants() {
				b := v.Baseline()
				cores.AppendRow(table.Row{v.String(), b.Tech.String(), b.Node.String(), b.Area, b.Perf, b.Freq})
			}
			cores.Render()

			budgets := newTable(a.out, "Budgets")
			budgets.AppendHeader(table.Row{"Preset", "Area (mm^2)", "Power (W)"})
			for _, name := range core.PredefinedBudgetNames() {
				b, _ := core.PredefinedBudget(name)
				budgets.AppendRow(table.Row{name, b.Area, b.Power})
			}
			budgets.Render()

			kernels := newTable(a.out, "Kernels")
			kernels.AppendHeader(table.Row{"Kernel", "Occur", "Accelerators"})
			for _, k := range suite.Kernels {
				kinds := make([]string, 0, len(k.Accelerators))
				for kind := range k.Accelerators {
					kinds = append(kinds, kind)
				}
				kernels.AppendRow(table.Row{k.Name, k.Occur, strings.Join(sortedStrings(kinds), ",")})
			}
			kernels.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&suitePath, "suite", "", "kernel suite YAML file (default: built-in kernels)")
	return cmd
}
