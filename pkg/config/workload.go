package config

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/lumos-dse/lumos/pkg/core"
)

// DefaultPrecision is the number of decimals kept by ApplicationSpecFrom.
const DefaultPrecision = 4

// ApplicationSpec describes one application of a workload.
type ApplicationSpec struct {
	Name string `yaml:"name" json:"name"`

	// F is the parallel fraction.
	F float64 `yaml:"f" json:"f"`

	// Kernels maps a kernel name to the fraction of execution it covers.
	Kernels map[string]float64 `yaml:"kernels,omitempty" json:"kernels,omitempty"`

	// Memory is the optional cache behaviour used by fixed-voltage evaluation.
	Memory *core.MemoryProfile `yaml:"memory,omitempty" json:"memory,omitempty"`
}

// WorkloadSpec is an ordered list of applications.
type WorkloadSpec struct {
	Applications []ApplicationSpec `yaml:"applications" json:"applications"`
}

// Validate returns every problem found in the workload. Kernel names are
// checked against r when it is not nil.
func (w WorkloadSpec) Validate(r *core.KernelRegistry) error {
	var errs field.ErrorList
	root := field.NewPath("applications")
	seen := make(map[string]bool, len(w.Applications))
	for i, a := range w.Applications {
		p := root.Index(i)
		switch {
		case a.Name == "":
			errs = append(errs, field.Required(p.Child("name"), ""))
		case seen[a.Name]:
			errs = append(errs, field.Duplicate(p.Child("name"), a.Name))
		}
		seen[a.Name] = true
		if a.F < 0 || a.F > 1 || math.IsNaN(a.F) {
			errs = append(errs, field.Invalid(p.Child("f"), a.F, "must be between 0 and 1"))
		}
		total := 0.0
		for _, k := range slices.Sorted(maps.Keys(a.Kernels)) {
			cov := a.Kernels[k]
			kp := p.Child("kernels").Key(k)
			if cov < 0 || cov > 1 || math.IsNaN(cov) {
				errs = append(errs, field.Invalid(kp, cov, "must be between 0 and 1"))
			}
			if r != nil {
				if _, err := r.Get(k); err != nil {
					errs = append(errs, field.NotFound(kp, k))
				}
			}
			total += cov
		}
		if total > a.F+1e-12 {
			errs = append(errs, field.Invalid(p.Child("kernels"), total,
				fmt.Sprintf("total coverage exceeds parallel fraction %g", a.F)))
		}
		if a.Memory != nil {
			if err := a.Memory.Validate(); err != nil {
				errs = append(errs, field.Invalid(p.Child("memory"), *a.Memory, err.Error()))
			}
		}
	}
	return errs.ToAggregate()
}

// Build returns the application described by the spec.
func (a ApplicationSpec) Build() (*core.Application, error) {
	app, err := core.NewApplication(a.Name, a.F)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", a.Name, err)
	}
	for _, k := range slices.Sorted(maps.Keys(a.Kernels)) {
		if err := app.AddKernel(k, a.Kernels[k]); err != nil {
			return nil, fmt.Errorf("application %s: %w", a.Name, err)
		}
	}
	if err := app.SetMemoryProfile(a.Memory); err != nil {
		return nil, fmt.Errorf("application %s: %w", a.Name, err)
	}
	return app, nil
}

// BuildWorkload validates w against r and returns its applications in order.
func BuildWorkload(w WorkloadSpec, r *core.KernelRegistry) ([]*core.Application, error) {
	if err := w.Validate(r); err != nil {
		return nil, err
	}
	apps := make([]*core.Application, 0, len(w.Applications))
	for _, a := range w.Applications {
		app, err := a.Build()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// ApplicationSpecFrom describes app with values kept to precision decimals.
// F rounds up and coverages round down so the result always builds.
func ApplicationSpecFrom(app *core.Application, precision int) ApplicationSpec {
	spec := ApplicationSpec{
		Name:   app.Name(),
		F:      min(roundUp(app.F(), precision), 1),
		Memory: app.MemoryProfile(),
	}
	if cov := app.CoverageMap(); len(cov) > 0 {
		spec.Kernels = make(map[string]float64, len(cov))
		for k, v := range cov {
			spec.Kernels[k] = roundDown(v, precision)
		}
	}
	return spec
}

// WorkloadSpecFrom describes apps in order.
func WorkloadSpecFrom(apps []*core.Application, precision int) WorkloadSpec {
	w := WorkloadSpec{Applications: make([]ApplicationSpec, 0, len(apps))}
	for _, app := range apps {
		w.Applications = append(w.Applications, ApplicationSpecFrom(app, precision))
	}
	return w
}

// ParseWorkload decodes a YAML workload. Unknown fields are rejected.
func ParseWorkload(data []byte) (WorkloadSpec, error) {
	var w WorkloadSpec
	if err := decodeStrict(data, &w); err != nil {
		return WorkloadSpec{}, fmt.Errorf("failed to parse workload: %w", err)
	}
	return w, nil
}

// the nudge keeps 0.15*100 = 14.999999999999998 from dropping a digit
const roundingNudge = 1e-9

func roundDown(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Floor(v*scale+roundingNudge) / scale
}

func roundUp(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Ceil(v*scale-roundingNudge) / scale
}
