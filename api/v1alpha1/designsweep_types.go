package v1alpha1

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"
)

// Allocation strategies accepted in AllocationSpec.Strategy.
const (
	StrategyEven             = "even"
	StrategyCoverageWeighted = "coverage-weighted"
)

// Evaluation modes accepted in DesignSweepSpec.Mode.
const (
	ModeDim  = "dim"
	ModeDark = "dark"
)

// DesignSweepSpec defines a grid of chip designs to evaluate against a workload.
type DesignSweepSpec struct {
	// Budget bounds the area, power and bandwidth of every design.
	// +kubebuilder:validation:Required
	Budget BudgetSpec `json:"budget"`

	// Core is the throughput core replicated across the free area.
	// +kubebuilder:validation:Required
	Core CoreSpec `json:"core"`

	// SerialCore is a dedicated core for the serial phase. When omitted one
	// of the throughput cores runs it.
	// +optional
	SerialCore *CoreSpec `json:"serialCore,omitempty"`

	// GPAccelerator is the general-purpose accelerator kind (fpga or gpu)
	// that receives the accelerator area not given to ASICs.
	// +kubebuilder:validation:Enum=fpga;gpu
	// +optional
	GPAccelerator string `json:"gpAccelerator,omitempty"`

	// Allocation describes how accelerator area is swept and split.
	// +kubebuilder:validation:Required
	Allocation AllocationSpec `json:"allocation"`

	// Mode selects dim-silicon (power-optimal voltage) or dark-silicon
	// (voltage ceiling) evaluation. Defaults to dim.
	// +kubebuilder:validation:Enum=dim;dark
	// +optional
	Mode string `json:"mode,omitempty"`

	// Suite is the path of the kernel suite YAML file.
	// +optional
	Suite string `json:"suite,omitempty"`

	// Workload is the path of the workload YAML file.
	// +kubebuilder:validation:MinLength=1
	Workload string `json:"workload"`
}

// BudgetSpec selects a predefined budget or gives one explicitly.
type BudgetSpec struct {
	// Preset names a predefined budget (large, medium, small, large-ideal-bw).
	// Explicit fields override the preset.
	// +optional
	Preset string `json:"preset,omitempty"`

	// Area in mm^2.
	// +optional
	Area *float64 `json:"area,omitempty"`

	// Power in W.
	// +optional
	Power *float64 `json:"power,omitempty"`

	// Bandwidth in GB/s keyed by technology node in nm, as a string.
	// +optional
	Bandwidth map[string]float64 `json:"bandwidth,omitempty"`
}

// CoreSpec names a core design at a node.
type CoreSpec struct {
	// Variant is a predefined core design, e.g. io-cmos.
	// +kubebuilder:validation:MinLength=1
	Variant string `json:"variant"`

	// Node is the technology node in nm. Defaults to the variant's own node.
	// +optional
	Node int `json:"node,omitempty"`

	// Variation enables process-variation aware frequency.
	// +optional
	Variation *VariationSpec `json:"variation,omitempty"`
}

// VariationSpec selects the worst-case corner and how much of the loss is mitigated.
type VariationSpec struct {
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Maximum=3
	Sigma int `json:"sigma"`

	// Mitigation scales the frequency loss, 1 applies it fully.
	Mitigation float64 `json:"mitigation"`
}

// AllocationSpec is the accelerator area grid.
type AllocationSpec struct {
	// Strategy splits the ASIC area among kernels.
	// +kubebuilder:validation:Enum=even;coverage-weighted
	// +optional
	Strategy string `json:"strategy,omitempty"`

	// Kernels receive ASICs. Empty means every kernel of the suite.
	// +optional
	Kernels []string `json:"kernels,omitempty"`

	// AreaPercent is the share of chip area given to accelerators.
	AreaPercent PercentRange `json:"areaPercent"`

	// ASICSharePercent is the share of accelerator area given to ASICs, the
	// rest goes to the general-purpose accelerator.
	ASICSharePercent PercentRange `json:"asicSharePercent"`
}

// PercentRange is an inclusive integer range of percentages.
type PercentRange struct {
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=100
	Start int `json:"start"`

	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=100
	Stop int `json:"stop"`

	// Step defaults to 1.
	// +kubebuilder:validation:Minimum=1
	// +optional
	Step int `json:"step,omitempty"`
}

// Values expands the range.
func (r PercentRange) Values() []int {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	var out []int
	for v := r.Start; v <= r.Stop; v += step {
		out = append(out, v)
	}
	return out
}

func (r PercentRange) validate(p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if r.Start < 0 || r.Start > 100 {
		errs = append(errs, field.Invalid(p.Child("start"), r.Start, "must be between 0 and 100"))
	}
	if r.Stop < 0 || r.Stop > 100 {
		errs = append(errs, field.Invalid(p.Child("stop"), r.Stop, "must be between 0 and 100"))
	}
	if r.Stop < r.Start {
		errs = append(errs, field.Invalid(p.Child("stop"), r.Stop, fmt.Sprintf("must not be below start %d", r.Start)))
	}
	if r.Step < 0 {
		errs = append(errs, field.Invalid(p.Child("step"), r.Step, "must be positive"))
	}
	return errs
}

// DesignSweepStatus summarizes a finished sweep.
type DesignSweepStatus struct {
	// RunID identifies the sweep run.
	// +optional
	RunID string `json:"runID,omitempty"`

	// Completed and Failed count evaluated design points.
	Completed int `json:"completed"`
	Failed    int `json:"failed"`

	// Best is the design point with the highest mean speedup.
	// +optional
	Best *SweepRecord `json:"best,omitempty"`

	// Conditions represent the latest available observations of the sweep.
	// +optional
	// +listType=map
	// +listMapKey=type
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
}

// SweepRecord is the outcome of one design point.
type SweepRecord struct {
	RunID            string `json:"runID,omitempty"`
	AreaPercent      int    `json:"areaPercent"`
	ASICSharePercent int    `json:"asicSharePercent"`

	// Allocation is the fraction of chip area given to each kernel's ASIC.
	// +optional
	Allocation map[string]float64 `json:"allocation,omitempty"`

	// GPAreaRatio is the fraction of chip area given to the general-purpose accelerator.
	// +optional
	GPAreaRatio float64 `json:"gpAreaRatio,omitempty"`

	CoreNum  int  `json:"coreNum"`
	Vdd      int  `json:"vdd"`
	Degraded bool `json:"degraded,omitempty"`

	// Stats aggregates the per-application speedups.
	Stats WorkloadStats `json:"stats"`

	// Error is set when the design point could not be evaluated.
	// +optional
	Error string `json:"error,omitempty"`

	// Duration is the evaluation wall time.
	// +optional
	Duration metav1.Duration `json:"duration,omitempty"`
}

// Failed reports whether the record carries an error.
func (r SweepRecord) Failed() bool { return r.Error != "" }

// WorkloadStats are summary statistics of speedups over a workload.
type WorkloadStats struct {
	Apps         int     `json:"apps"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"stdDev"`
	GeoMean      float64 `json:"geoMean"`
	HarmonicMean float64 `json:"harmonicMean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=ds
// +kubebuilder:printcolumn:name="Core",type=string,JSONPath=".spec.core.variant"
// +kubebuilder:printcolumn:name="Completed",type=integer,JSONPath=".status.completed"
// +kubebuilder:printcolumn:name="Failed",type=integer,JSONPath=".status.failed"
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=".metadata.creationTimestamp"

// DesignSweep is the Schema for the designsweeps API.
type DesignSweep struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DesignSweepSpec   `json:"spec,omitempty"`
	Status DesignSweepStatus `json:"status,omitempty"`
}

// DesignSweepList contains a list of DesignSweep.
// +kubebuilder:object:root=true
type DesignSweepList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DesignSweep `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DesignSweep{}, &DesignSweepList{})
}

// Condition types for DesignSweep.
const (
	// TypeComplete indicates every design point produced a record.
	TypeComplete = "Complete"
)

// Condition reasons for Complete.
const (
	ReasonAllSucceeded = "AllSucceeded"
	ReasonSomeFailed   = "SomeFailed"
	ReasonCancelled    = "Cancelled"
)

// Validate checks the structure of the spec. Names of variants, presets and
// kernels are resolved when the sweep is planned.
func (s *DesignSweepSpec) Validate() error {
	var errs field.ErrorList
	spec := field.NewPath("spec")

	b := spec.Child("budget")
	if s.Budget.Preset == "" && (s.Budget.Area == nil || s.Budget.Power == nil) {
		errs = append(errs, field.Required(b, "either a preset or both area and power"))
	}
	if s.Budget.Area != nil && *s.Budget.Area <= 0 {
		errs = append(errs, field.Invalid(b.Child("area"), *s.Budget.Area, "must be positive"))
	}
	if s.Budget.Power != nil && *s.Budget.Power <= 0 {
		errs = append(errs, field.Invalid(b.Child("power"), *s.Budget.Power, "must be positive"))
	}

	errs = append(errs, s.Core.validate(spec.Child("core"))...)
	if s.SerialCore != nil {
		errs = append(errs, s.SerialCore.validate(spec.Child("serialCore"))...)
	}

	switch s.GPAccelerator {
	case "", "fpga", "gpu":
	default:
		errs = append(errs, field.NotSupported(spec.Child("gpAccelerator"), s.GPAccelerator, []string{"fpga", "gpu"}))
	}
	switch s.Mode {
	case "", ModeDim, ModeDark:
	default:
		errs = append(errs, field.NotSupported(spec.Child("mode"), s.Mode, []string{ModeDim, ModeDark}))
	}

	a := spec.Child("allocation")
	switch s.Allocation.Strategy {
	case "", StrategyEven, StrategyCoverageWeighted:
	default:
		errs = append(errs, field.NotSupported(a.Child("strategy"), s.Allocation.Strategy,
			[]string{StrategyEven, StrategyCoverageWeighted}))
	}
	errs = append(errs, s.Allocation.AreaPercent.validate(a.Child("areaPercent"))...)
	errs = append(errs, s.Allocation.ASICSharePercent.validate(a.Child("asicSharePercent"))...)
	if s.GPAccelerator == "" && s.Allocation.ASICSharePercent.Start < 100 {
		errs = append(errs, field.Invalid(a.Child("asicSharePercent"), s.Allocation.ASICSharePercent.Start,
			"shares below 100 need a gpAccelerator"))
	}

	if s.Workload == "" {
		errs = append(errs, field.Required(spec.Child("workload"), ""))
	}
	return errs.ToAggregate()
}

func (c CoreSpec) validate(p *field.Path) field.ErrorList {
	var errs field.ErrorList
	if c.Variant == "" {
		errs = append(errs, field.Required(p.Child("variant"), ""))
	}
	if c.Node < 0 {
		errs = append(errs, field.Invalid(p.Child("node"), c.Node, "must be positive"))
	}
	if v := c.Variation; v != nil {
		if v.Sigma < 1 || v.Sigma > 3 {
			errs = append(errs, field.Invalid(p.Child("variation", "sigma"), v.Sigma, "must be 1, 2 or 3"))
		}
		if v.Mitigation < 0 || v.Mitigation > 1 {
			errs = append(errs, field.Invalid(p.Child("variation", "mitigation"), v.Mitigation, "must be between 0 and 1"))
		}
	}
	return errs
}

// ParseDesignSweep decodes a YAML or JSON manifest and validates its spec.
func ParseDesignSweep(data []byte) (*DesignSweep, error) {
	ds := &DesignSweep{}
	if err := yaml.UnmarshalStrict(data, ds); err != nil {
		return nil, fmt.Errorf("failed to parse DesignSweep: %w", err)
	}
	if ds.Kind != "" && ds.Kind != "DesignSweep" {
		return nil, fmt.Errorf("unexpected kind %q, want DesignSweep", ds.Kind)
	}
	if err := ds.Spec.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
