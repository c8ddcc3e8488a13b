package config

import (
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/internal/logging"
	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
)

// ConfigMap layout of a kernel suite.
const (
	// DefaultSuiteConfigMapName is the default name of the ConfigMap that holds
	// the kernel suite and workload.
	DefaultSuiteConfigMapName = "lumos-suite"

	// GlobalDefaultsKey holds coefficients inherited by every kernel entry.
	GlobalDefaultsKey = "default"

	// SuiteKey holds a complete suite document. When present, per-kernel
	// entries are ignored.
	SuiteKey = "kernels.yaml"

	// WorkloadKey holds the workload document.
	WorkloadKey = "workload.yaml"
)

// KernelEntries holds the kernel entries of a ConfigMap keyed by kernel
// name, plus the global defaults under GlobalDefaultsKey.
type KernelEntries map[string]pkgconfig.KernelSpec

// ParseKernelConfigMap parses per-kernel entries from a ConfigMap's data.
// The format:
//   - "default": occur and accelerator coefficients shared by all kernels
//   - "<entry>": one kernel, named by its name field
//
// Entries that fail to parse or lack a name are skipped. When two entries
// name the same kernel the first key in sorted order wins.
func ParseKernelConfigMap(data map[string]string) KernelEntries {
	out := make(KernelEntries)
	if data == nil {
		return out
	}
	nameToKey := make(map[string]string)

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if key == SuiteKey || key == WorkloadKey {
			continue
		}
		var spec pkgconfig.KernelSpec
		if err := yaml.Unmarshal([]byte(data[key]), &spec); err != nil {
			ctrl.Log.Info("Failed to parse kernel config entry, skipping",
				"key", key,
				"error", err)
			continue
		}

		if key == GlobalDefaultsKey {
			out[GlobalDefaultsKey] = spec
			continue
		}

		if spec.Name == "" {
			ctrl.Log.Info("Skipping kernel config entry without name field",
				"key", key)
			continue
		}
		if winner, exists := nameToKey[spec.Name]; exists {
			ctrl.Log.Info("Duplicate kernel name found in suite ConfigMap - first key wins",
				"name", spec.Name,
				"winningKey", winner,
				"duplicateKey", key)
			continue
		}
		nameToKey[spec.Name] = key
		out[spec.Name] = spec
	}

	ctrl.Log.V(logging.DEBUG).Info("Parsed kernel config entries",
		"kernelCount", len(nameToKey))
	return out
}

// Kernel returns the effective spec of a kernel: its own coefficients
// merged over the global defaults.
func (e KernelEntries) Kernel(name string) (pkgconfig.KernelSpec, bool) {
	spec, ok := e[name]
	if !ok || name == GlobalDefaultsKey {
		return pkgconfig.KernelSpec{}, false
	}
	defaults := e[GlobalDefaultsKey]

	result := pkgconfig.KernelSpec{
		Name:         spec.Name,
		Occur:        defaults.Occur,
		Accelerators: maps.Clone(defaults.Accelerators),
	}
	if spec.Occur != 0 {
		result.Occur = spec.Occur
	}
	if result.Accelerators == nil {
		result.Accelerators = make(map[string]pkgconfig.KernelParamsSpec, len(spec.Accelerators))
	}
	maps.Copy(result.Accelerators, spec.Accelerators)
	return result, true
}

// Suite returns the effective specs of every kernel in name order.
func (e KernelEntries) Suite() pkgconfig.SuiteSpec {
	var s pkgconfig.SuiteSpec
	for _, name := range slices.Sorted(maps.Keys(e)) {
		if k, ok := e.Kernel(name); ok {
			s.Kernels = append(s.Kernels, k)
		}
	}
	return s
}
