package sweep

import (
	"context"
	"fmt"
	"maps"
	"strconv"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/internal/resultcache"
	"github.com/lumos-dse/lumos/pkg/solver"
)

// HeteroJob evaluates one heterogeneous design: AreaPercent of the chip goes
// to accelerators, ASICSharePercent of that to per-kernel ASICs and the rest
// to the general-purpose accelerator.
type HeteroJob struct {
	plan *Plan

	RunID            string
	AreaPercent      int
	ASICSharePercent int
}

// Key implements Job.
func (j *HeteroJob) Key() string {
	labels := maps.Clone(j.plan.labels)
	labels["areaPercent"] = strconv.Itoa(j.AreaPercent)
	labels["asicSharePercent"] = strconv.Itoa(j.ASICSharePercent)
	return resultcache.Key(labels)
}

// ratios returns the ASIC and general-purpose accelerator area fractions.
func (j *HeteroJob) ratios() (asic, gp float64) {
	acc := float64(j.AreaPercent) / 100
	asic = acc * float64(j.ASICSharePercent) / 100
	if j.plan.gpKind == nil {
		return asic, 0
	}
	return asic, acc - asic
}

// System builds the chip of this design point. Each call returns a new
// System owned by the caller.
func (j *HeteroJob) System(ctx context.Context) (*solver.System, map[string]float64, error) {
	p := j.plan
	asicRatio, gpRatio := j.ratios()

	b := solver.NewSystemBuilder().
		WithLibrary(p.lib).
		WithBudget(p.budget).
		WithCore(p.core).
		WithRegistry(p.registry).
		WithLogger(ctrl.LoggerFrom(ctx).WithName("solver"))
	if p.serial != nil {
		b = b.WithSerialCore(p.serial)
	}
	if p.gpKind != nil {
		b = b.WithGPAccelerator(*p.gpKind, gpRatio)
	}
	sys, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	shares, err := p.allocator.Allocate(ctx, asicRatio, p.kernels, p.workload)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range p.kernels {
		share, ok := shares[k]
		if !ok || share <= 0 {
			delete(shares, k)
			continue
		}
		if err := sys.SetASIC(k, "asic-"+k, share); err != nil {
			return nil, nil, fmt.Errorf("allocating ASIC for %s: %w", k, err)
		}
	}
	return sys, shares, nil
}

// Run implements Job.
func (j *HeteroJob) Run(ctx context.Context) (v1alpha1.SweepRecord, error) {
	logger := ctrl.LoggerFrom(ctx)
	sys, shares, err := j.System(ctx)
	if err != nil {
		return v1alpha1.SweepRecord{}, err
	}
	_, gpRatio := j.ratios()

	rec := v1alpha1.SweepRecord{
		RunID:            j.RunID,
		AreaPercent:      j.AreaPercent,
		ASICSharePercent: j.ASICSharePercent,
		GPAreaRatio:      gpRatio,
	}
	if len(shares) > 0 {
		rec.Allocation = shares
	}

	perfs := make([]float64, 0, len(j.plan.workload))
	for _, app := range j.plan.workload {
		if err := ctx.Err(); err != nil {
			return v1alpha1.SweepRecord{}, err
		}
		var res solver.Result
		if j.plan.mode == solver.ModeDark {
			res, err = sys.EvaluateDark(app)
		} else {
			res, err = sys.Evaluate(app)
		}
		if err != nil {
			return v1alpha1.SweepRecord{}, fmt.Errorf("evaluating %s: %w", app.Name(), err)
		}
		perfs = append(perfs, res.Perf)
		rec.CoreNum = res.CoreNum
		rec.Vdd = res.Vdd
		rec.Degraded = rec.Degraded || res.Degraded
		logger.V(logging.TRACE).Info("Evaluated application", "app", app.Name(), "perf", res.Perf,
			"coreNum", res.CoreNum, "vdd", res.Vdd)
	}

	if rec.Stats, err = Summarize(perfs); err != nil {
		return v1alpha1.SweepRecord{}, err
	}
	return rec, nil
}
