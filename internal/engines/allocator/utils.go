package allocator

import (
	"fmt"

	"github.com/lumos-dse/lumos/pkg/core"
)

// TotalCoverage sums the coverage of each kernel over all applications of
// the workload. Kernels absent from every application map to zero.
func TotalCoverage(workload []*core.Application, kernels []string) map[string]float64 {
	total := make(map[string]float64, len(kernels))
	for _, k := range kernels {
		total[k] = 0
	}
	for _, app := range workload {
		for _, k := range app.Kernels() {
			if _, wanted := total[k]; !wanted {
				continue
			}
			cov, _ := app.Coverage(k)
			total[k] += cov
		}
	}
	return total
}

func checkRequest(areaRatio float64, kernels []string) error {
	if !(areaRatio >= 0 && areaRatio <= 1) {
		return fmt.Errorf("area ratio %g not in [0,1]", areaRatio)
	}
	seen := make(map[string]bool, len(kernels))
	for _, k := range kernels {
		if seen[k] {
			return fmt.Errorf("kernel %s listed twice", k)
		}
		seen[k] = true
	}
	return nil
}

// split divides areaRatio among kernels in proportion to weights. Kernels
// with zero weight are left out. The last weighted kernel takes the
// rounding remainder.
func split(areaRatio float64, kernels []string, weights map[string]float64) map[string]float64 {
	shares := make(map[string]float64, len(kernels))
	total := 0.0
	last := -1
	for i, k := range kernels {
		if weights[k] > 0 {
			total += weights[k]
			last = i
		}
	}
	if last < 0 {
		return shares
	}
	assigned := 0.0
	for _, k := range kernels[:last] {
		if weights[k] <= 0 {
			continue
		}
		share := areaRatio * weights[k] / total
		shares[k] = share
		assigned += share
	}
	shares[kernels[last]] = max(areaRatio-assigned, 0)
	return shares
}
