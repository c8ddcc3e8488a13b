package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lumos-dse/lumos/internal/config"
	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
)

func (a *app) generateCommand() *cobra.Command {
	var (
		inputs inputFlags
		gen    pkgconfig.GeneratorSpec
		dist   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic workload from a kernel suite",
		Example: `  lumos generate --apps 100 --distribution normal --param1 0.6 --param2 0.1 --seed 7 > workload.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen.Distribution = pkgconfig.CoverageDistribution(dist)
			suite, err := config.FileSource{SuitePath: inputs.suite}.Suite(cmd.Context())
			if err != nil {
				return err
			}
			w, err := pkgconfig.GenerateWorkload(suite, gen)
			if err != nil {
				return err
			}
			return a.writeWorkload(w)
		},
	}
	cmd.Flags().StringVar(&inputs.suite, "suite", "", "kernel suite YAML file (default: built-in kernels)")
	cmd.Flags().IntVar(&gen.Apps, "apps", 100, "candidate applications to draw")
	cmd.Flags().StringVar(&dist, "distribution", string(pkgconfig.CoverageNormal), "total coverage distribution: normal, lognormal, uniform or fixed")
	cmd.Flags().Float64Var(&gen.Param1, "param1", 0.5, "mean (normal, lognormal), lower bound (uniform) or the coverage (fixed)")
	cmd.Flags().Float64Var(&gen.Param2, "param2", 0.1, "standard deviation (normal, lognormal) or upper bound (uniform)")
	cmd.Flags().Uint64Var(&gen.Seed, "seed", 0, "random seed")
	return cmd
}

func (a *app) writeWorkload(w pkgconfig.WorkloadSpec) error {
	apps, err := pkgconfig.BuildWorkload(w, nil)
	if err != nil {
		return err
	}
	w = pkgconfig.WorkloadSpecFrom(apps, a.cfg.Output.Precision)
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return fmt.Errorf("failed to encode workload: %w", err)
	}
	return enc.Close()
}
