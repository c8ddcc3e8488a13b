package allocator

import (
	"context"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/pkg/core"
)

// CoverageWeightedAllocator gives each kernel area in proportion to its
// coverage summed over the workload. Kernels the workload never uses get
// nothing. When no kernel is used the area is split evenly.
type CoverageWeightedAllocator struct{}

// Allocate implements Allocator.
func (a *CoverageWeightedAllocator) Allocate(
	ctx context.Context,
	areaRatio float64,
	kernels []string,
	workload []*core.Application,
) (map[string]float64, error) {
	logger := ctrl.LoggerFrom(ctx)
	if err := checkRequest(areaRatio, kernels); err != nil {
		return nil, err
	}

	weights := TotalCoverage(workload, kernels)
	total := 0.0
	for _, k := range kernels {
		total += weights[k]
	}
	if total == 0 {
		logger.V(logging.DEBUG).Info("Workload uses none of the kernels, splitting accelerator area evenly",
			"kernels", kernels)
		return (&EvenAllocator{}).Allocate(ctx, areaRatio, kernels, workload)
	}

	shares := split(areaRatio, kernels, weights)
	logger.V(logging.TRACE).Info("Coverage weighted accelerator allocation",
		"areaRatio", areaRatio, "coverage", weights, "shares", shares)
	return shares, nil
}
