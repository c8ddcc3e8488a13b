package main

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/metrics"
	"github.com/lumos-dse/lumos/internal/resultcache"
	"github.com/lumos-dse/lumos/internal/sweep"
)

func (a *app) sweepCommand() *cobra.Command {
	var (
		file      string
		configMap string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate every design point of a DesignSweep manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSweep(cmd, file, configMap)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "DesignSweep manifest")
	cmd.Flags().StringVar(&configMap, "suite-configmap", "",
		"read the suite and workload from this ConfigMap, as namespace/name, instead of the manifest paths")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runSweep(cmd *cobra.Command, file, configMap string) error {
	ctx := cmd.Context()
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	ds, err := v1alpha1.ParseDesignSweep(data)
	if err != nil {
		return err
	}

	src, err := a.source(inputFlags{
		suite:     relativeTo(file, ds.Spec.Suite),
		workload:  relativeTo(file, ds.Spec.Workload),
		configMap: configMap,
	})
	if err != nil {
		return err
	}
	registry, workload, err := load(cmd, src)
	if err != nil {
		return err
	}
	plan, err := sweep.NewPlan(a.lib, ds.Spec, registry, workload)
	if err != nil {
		return err
	}

	cache, err := resultcache.New(a.cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			ctrl.LoggerFrom(ctx).Error(err, "Failed to close result cache")
		}
	}()

	runID := xid.New().String()
	logger := ctrl.LoggerFrom(ctx).WithValues("sweep", ds.Name, "runID", runID)
	ctx = ctrl.LoggerInto(ctx, logger)

	recorder := metrics.NewRecorder()
	runner := &sweep.Runner{
		Workers:       a.cfg.Sweep.Workers,
		QueueCapacity: a.cfg.Sweep.QueueCapacity,
		Cache:         cache,
		Metrics:       recorder,
	}
	jobs := plan.Jobs(runID)
	logger.Info("Running sweep", "designPoints", len(jobs), "workers", runner.Workers)
	results, runErr := runner.Run(ctx, jobs)

	ds.Status = sweep.Status(runID, results, ds.Generation)
	logger.Info("Sweep done", "completed", ds.Status.Completed, "failed", ds.Status.Failed)

	if a.cfg.MetricsFile != "" {
		if err := writeMetrics(a.cfg.MetricsFile, recorder); err != nil {
			return err
		}
	}
	records := make([]v1alpha1.SweepRecord, len(results))
	for i, res := range results {
		records[i] = res.Record
	}
	if err := printSweep(a.out, a.cfg.Output.Format, ds, records); err != nil {
		return err
	}
	return runErr
}

func writeMetrics(path string, recorder *metrics.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := recorder.WriteText(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}
