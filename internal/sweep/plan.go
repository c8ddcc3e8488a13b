package sweep

import (
	"fmt"
	"hash/fnv"
	"maps"
	"slices"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/engines/allocator"
	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/solver"
	"github.com/lumos-dse/lumos/pkg/tech"
)

// Plan is a resolved DesignSweep. Everything it holds is read-only once
// built, so jobs of one plan run concurrently without coordination.
type Plan struct {
	lib       *tech.Library
	budget    core.Budget
	core      *core.Core
	serial    *core.Core
	gpKind    *core.AcceleratorKind
	mode      solver.Mode
	registry  *core.KernelRegistry
	workload  []*core.Application
	allocator allocator.Allocator
	kernels   []string

	areaPercents  []int
	sharePercents []int

	labels map[string]string
}

// NewPlan resolves spec against a kernel registry and workload.
func NewPlan(lib *tech.Library, spec v1alpha1.DesignSweepSpec, registry *core.KernelRegistry, workload []*core.Application) (*Plan, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: sweep needs a kernel registry", core.ErrIncompleteBuilder)
	}
	if len(workload) == 0 {
		return nil, fmt.Errorf("%w: sweep needs at least one application", core.ErrIncompleteBuilder)
	}
	if lib == nil {
		var err error
		if lib, err = tech.DefaultLibrary(); err != nil {
			return nil, err
		}
	}

	p := &Plan{
		lib:           lib,
		registry:      registry,
		workload:      workload,
		mode:          solver.ModeDim,
		areaPercents:  spec.Allocation.AreaPercent.Values(),
		sharePercents: spec.Allocation.ASICSharePercent.Values(),
	}

	var err error
	if p.budget, err = ResolveBudget(spec.Budget); err != nil {
		return nil, err
	}
	if p.core, err = ResolveCore(lib, spec.Core, 0); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if spec.SerialCore != nil {
		if p.serial, err = ResolveCore(lib, *spec.SerialCore, p.core.Node()); err != nil {
			return nil, fmt.Errorf("serial core: %w", err)
		}
	}
	if spec.GPAccelerator != "" {
		kind, err := core.ParseAcceleratorKind(spec.GPAccelerator)
		if err != nil {
			return nil, err
		}
		p.gpKind = &kind
	}
	if spec.Mode == v1alpha1.ModeDark {
		p.mode = solver.ModeDark
	}

	strategy, err := allocator.ParseStrategy(spec.Allocation.Strategy)
	if err != nil {
		return nil, err
	}
	if p.allocator, err = allocator.NewAllocator(strategy); err != nil {
		return nil, err
	}

	p.kernels = spec.Allocation.Kernels
	if len(p.kernels) == 0 {
		p.kernels = registry.Names()
	}
	seen := sets.New[string]()
	for _, k := range p.kernels {
		if seen.Has(k) {
			return nil, fmt.Errorf("%w: kernel %s listed twice", core.ErrDuplicateKernel, k)
		}
		seen.Insert(k)
		if _, err := registry.Get(k); err != nil {
			return nil, err
		}
	}

	p.labels = map[string]string{
		"core":     p.core.Name(),
		"node":     strconv.Itoa(int(p.core.Node())),
		"area":     strconv.FormatFloat(p.budget.Area, 'g', -1, 64),
		"power":    strconv.FormatFloat(p.budget.Power, 'g', -1, 64),
		"mode":     string(p.mode),
		"strategy": strategy.String(),
		"kernels":  strings.Join(p.kernels, "+"),
		"workload": workloadDigest(workload),
	}
	if spec.Core.Variation != nil {
		p.labels["variation"] = fmt.Sprintf("%d/%g", spec.Core.Variation.Sigma, spec.Core.Variation.Mitigation)
	}
	if p.serial != nil {
		p.labels["serial"] = p.serial.Name()
	}
	if p.gpKind != nil {
		p.labels["gp"] = p.gpKind.String()
	}
	if bw, ok := p.budget.BandwidthAt(p.core.Node()); ok {
		p.labels["bandwidth"] = strconv.FormatFloat(bw, 'g', -1, 64)
	}
	return p, nil
}

// ResolveBudget returns the preset named by spec with its explicit fields
// applied. Bandwidth keys are node sizes in nm, with or without the unit.
func ResolveBudget(spec v1alpha1.BudgetSpec) (core.Budget, error) {
	var b core.Budget
	if spec.Preset != "" {
		var err error
		if b, err = core.PredefinedBudget(spec.Preset); err != nil {
			return core.Budget{}, err
		}
	}
	if spec.Area != nil {
		b.Area = *spec.Area
	}
	if spec.Power != nil {
		b.Power = *spec.Power
	}
	if len(spec.Bandwidth) > 0 {
		bw := make(map[tech.Node]float64, len(spec.Bandwidth))
		for key, v := range spec.Bandwidth {
			node, err := strconv.Atoi(strings.TrimSuffix(key, "nm"))
			if err != nil || node <= 0 {
				return core.Budget{}, fmt.Errorf("%w: bandwidth key %q is not a node", core.ErrInvalidBudget, key)
			}
			bw[tech.Node(node)] = v
		}
		if b.Bandwidth == nil {
			b.Bandwidth = bw
		} else {
			maps.Copy(b.Bandwidth, bw)
		}
	}
	return core.NewBudget(b.Area, b.Power, b.Bandwidth)
}

// ResolveCore builds the core described by spec. A zero node falls back
// to defaultNode, then to the variant's own node.
func ResolveCore(lib *tech.Library, spec v1alpha1.CoreSpec, defaultNode tech.Node) (*core.Core, error) {
	variant, err := core.ParseVariant(spec.Variant)
	if err != nil {
		return nil, err
	}
	b := core.NewCoreBuilder().WithLibrary(lib).WithVariant(variant)
	switch {
	case spec.Node > 0:
		b = b.WithNode(tech.Node(spec.Node))
	case defaultNode > 0:
		b = b.WithNode(defaultNode)
	}
	if v := spec.Variation; v != nil {
		b = b.WithVariation(tech.Sigma(v.Sigma), v.Mitigation)
	}
	return b.Build()
}

// workloadDigest fingerprints the applications so cached records are only
// reused for the same workload.
func workloadDigest(workload []*core.Application) string {
	h := fnv.New64a()
	for _, app := range workload {
		fmt.Fprintf(h, "%s|%g", app.Name(), app.F())
		cov := app.CoverageMap()
		for _, k := range slices.Sorted(maps.Keys(cov)) {
			fmt.Fprintf(h, "|%s=%g", k, cov[k])
		}
		if m := app.MemoryProfile(); m != nil {
			fmt.Fprintf(h, "|mem=%+v", *m)
		}
		h.Write([]byte{'\n'}) //nolint:errcheck
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Workload returns the applications evaluated by every job.
func (p *Plan) Workload() []*core.Application { return p.workload }

// Kernels returns the kernels that receive ASICs, in allocation order.
func (p *Plan) Kernels() []string { return slices.Clone(p.kernels) }

// Jobs expands the allocation grid into one job per design point, area
// percent major.
func (p *Plan) Jobs(runID string) []Job {
	jobs := make([]Job, 0, len(p.areaPercents)*len(p.sharePercents))
	for _, area := range p.areaPercents {
		for _, share := range p.sharePercents {
			jobs = append(jobs, &HeteroJob{plan: p, RunID: runID, AreaPercent: area, ASICSharePercent: share})
		}
	}
	return jobs
}
