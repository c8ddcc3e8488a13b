package config

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/lumos-dse/lumos/pkg/core"
)

// TaskSpec is one task of a DAG application.
type TaskSpec struct {
	Kernel string  `yaml:"kernel" json:"kernel"`
	Length float64 `yaml:"length" json:"length"`
	// Parallel is the fraction of the task that scales over throughput cores.
	Parallel float64 `yaml:"parallel,omitempty" json:"parallel,omitempty"`
	// After lists the indexes of earlier tasks this one waits for.
	After []int `yaml:"after,omitempty" json:"after,omitempty"`
}

// DAGSpec describes an application as tasks with dependencies. Tasks are
// indexed in listing order.
type DAGSpec struct {
	Name  string     `yaml:"name" json:"name"`
	Tasks []TaskSpec `yaml:"tasks" json:"tasks"`
}

// Validate returns every problem found in d. Kernel names are checked
// against r when it is not nil.
func (d DAGSpec) Validate(r *core.KernelRegistry) error {
	var errs field.ErrorList
	if d.Name == "" {
		errs = append(errs, field.Required(field.NewPath("name"), ""))
	}
	root := field.NewPath("tasks")
	if len(d.Tasks) == 0 {
		errs = append(errs, field.Required(root, "at least one task"))
	}
	for i, t := range d.Tasks {
		p := root.Index(i)
		if t.Kernel == "" {
			errs = append(errs, field.Required(p.Child("kernel"), ""))
		} else if r != nil {
			if _, err := r.Get(t.Kernel); err != nil {
				errs = append(errs, field.NotFound(p.Child("kernel"), t.Kernel))
			}
		}
		if !(t.Length > 0) {
			errs = append(errs, field.Invalid(p.Child("length"), t.Length, "must be positive"))
		}
		if t.Parallel < 0 || t.Parallel > 1 {
			errs = append(errs, field.Invalid(p.Child("parallel"), t.Parallel, "must be between 0 and 1"))
		}
		for j, pred := range t.After {
			if pred < 0 || pred >= i {
				errs = append(errs, field.Invalid(p.Child("after").Index(j), pred, "must name an earlier task"))
			}
		}
	}
	return errs.ToAggregate()
}

// BuildDAG validates d against r and returns the application.
func BuildDAG(d DAGSpec, r *core.KernelRegistry) (*core.DAGApplication, error) {
	if err := d.Validate(r); err != nil {
		return nil, err
	}
	app, err := core.NewDAGApplication(d.Name)
	if err != nil {
		return nil, err
	}
	for i, t := range d.Tasks {
		if _, err := app.AddTask(core.Task{Kernel: t.Kernel, Length: t.Length, Parallel: t.Parallel}); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		for _, pred := range t.After {
			if err := app.AddDependency(pred, i); err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
		}
	}
	return app, nil
}

// ParseDAG decodes a YAML DAG application. Unknown fields are rejected.
func ParseDAG(data []byte) (DAGSpec, error) {
	var d DAGSpec
	if err := decodeStrict(data, &d); err != nil {
		return DAGSpec{}, fmt.Errorf("failed to parse DAG application: %w", err)
	}
	return d, nil
}
