package allocator

import (
	"context"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/pkg/core"
)

// EvenAllocator gives every kernel the same area. The last kernel takes the
// rounding remainder so the shares add up exactly.
type EvenAllocator struct{}

// Allocate implements Allocator.
func (a *EvenAllocator) Allocate(
	ctx context.Context,
	areaRatio float64,
	kernels []string,
	_ []*core.Application,
) (map[string]float64, error) {
	if err := checkRequest(areaRatio, kernels); err != nil {
		return nil, err
	}
	weights := make(map[string]float64, len(kernels))
	for _, k := range kernels {
		weights[k] = 1
	}
	shares := split(areaRatio, kernels, weights)
	ctrl.LoggerFrom(ctx).V(logging.TRACE).Info("Even accelerator allocation",
		"areaRatio", areaRatio, "shares", shares)
	return shares, nil
}
