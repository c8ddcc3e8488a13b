package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/lumos-dse/lumos/pkg/core"
)

// KernelParamsSpec are the coefficients of a kernel on one accelerator kind.
type KernelParamsSpec struct {
	Miu       float64 `yaml:"miu" json:"miu"`
	Phi       float64 `yaml:"phi" json:"phi"`
	Bandwidth float64 `yaml:"bandwidth" json:"bandwidth"`
}

// KernelSpec describes one kernel of a suite.
type KernelSpec struct {
	Name string `yaml:"name" json:"name"`

	// Occur is the probability that a generated application uses the kernel.
	Occur float64 `yaml:"occur,omitempty" json:"occur,omitempty"`

	// Accelerators maps an accelerator kind (asic, fpga, gpu) to coefficients.
	Accelerators map[string]KernelParamsSpec `yaml:"accelerators" json:"accelerators"`
}

// SuiteSpec is a set of kernels.
type SuiteSpec struct {
	Kernels []KernelSpec `yaml:"kernels" json:"kernels"`
}

// Validate returns every problem found in the suite.
func (s SuiteSpec) Validate() error {
	var errs field.ErrorList
	root := field.NewPath("kernels")
	if len(s.Kernels) == 0 {
		errs = append(errs, field.Required(root, "suite has no kernels"))
	}
	seen := make(map[string]bool, len(s.Kernels))
	for i, k := range s.Kernels {
		p := root.Index(i)
		switch {
		case k.Name == "":
			errs = append(errs, field.Required(p.Child("name"), ""))
		case seen[k.Name]:
			errs = append(errs, field.Duplicate(p.Child("name"), k.Name))
		}
		seen[k.Name] = true
		if k.Occur < 0 || k.Occur > 1 {
			errs = append(errs, field.Invalid(p.Child("occur"), k.Occur, "must be between 0 and 1"))
		}
		if len(k.Accelerators) == 0 {
			errs = append(errs, field.Required(p.Child("accelerators"), "kernel has no accelerator coefficients"))
		}
		for _, name := range slices.Sorted(maps.Keys(k.Accelerators)) {
			ap := p.Child("accelerators").Key(name)
			if _, err := core.ParseAcceleratorKind(name); err != nil {
				errs = append(errs, field.NotSupported(ap, name, []string{"asic", "fpga", "gpu"}))
				continue
			}
			if err := k.Accelerators[name].params().Validate(); err != nil {
				errs = append(errs, field.Invalid(ap, k.Accelerators[name], err.Error()))
			}
		}
	}
	return errs.ToAggregate()
}

func (p KernelParamsSpec) params() core.KernelParams {
	return core.KernelParams{Miu: p.Miu, Phi: p.Phi, Bandwidth: p.Bandwidth}
}

// BuildRegistry validates the suite and returns a registry of its kernels.
func (s SuiteSpec) BuildRegistry() (*core.KernelRegistry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	kernels := make([]*core.Kernel, 0, len(s.Kernels))
	for _, ks := range s.Kernels {
		params := make(map[core.AcceleratorKind]core.KernelParams, len(ks.Accelerators))
		for name, p := range ks.Accelerators {
			kind, _ := core.ParseAcceleratorKind(name)
			params[kind] = p.params()
		}
		k, err := core.NewKernel(ks.Name, params)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, k)
	}
	return core.NewKernelRegistry(kernels...)
}

// Kernel returns the kernel spec with the given name.
func (s SuiteSpec) Kernel(name string) (KernelSpec, bool) {
	for _, k := range s.Kernels {
		if k.Name == name {
			return k, true
		}
	}
	return KernelSpec{}, false
}

// SuiteSpecFrom describes the kernels of a registry. Occur is left zero.
func SuiteSpecFrom(r *core.KernelRegistry) SuiteSpec {
	var s SuiteSpec
	for _, name := range r.Names() {
		k, _ := r.Get(name)
		ks := KernelSpec{Name: name, Accelerators: make(map[string]KernelParamsSpec)}
		for _, kind := range k.Kinds() {
			p, _ := k.Params(kind)
			ks.Accelerators[kind.String()] = KernelParamsSpec{Miu: p.Miu, Phi: p.Phi, Bandwidth: p.Bandwidth}
		}
		s.Kernels = append(s.Kernels, ks)
	}
	return s
}

// ParseSuite decodes a YAML suite. Unknown fields are rejected.
func ParseSuite(data []byte) (SuiteSpec, error) {
	var s SuiteSpec
	if err := decodeStrict(data, &s); err != nil {
		return SuiteSpec{}, fmt.Errorf("failed to parse kernel suite: %w", err)
	}
	return s, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
