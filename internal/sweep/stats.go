package sweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lumos-dse/lumos/api/v1alpha1"
)

// AggregationType names a statistic over per-application speedups.
type AggregationType string

const (
	AggMean         AggregationType = "mean"
	AggStdDev       AggregationType = "stddev"
	AggGeoMean      AggregationType = "gmean"
	AggHarmonicMean AggregationType = "hmean"
	AggMin          AggregationType = "min"
	AggMax          AggregationType = "max"
)

// Aggregate computes agg over values. An empty slice aggregates to zero.
// The standard deviation of a single value is zero.
func Aggregate(values []float64, agg AggregationType) (float64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	switch agg {
	case AggMean:
		return stat.Mean(values, nil), nil
	case AggStdDev:
		if len(values) < 2 {
			return 0, nil
		}
		return stat.StdDev(values, nil), nil
	case AggGeoMean:
		if floats.Min(values) <= 0 {
			return 0, fmt.Errorf("geometric mean needs positive values, got %g", floats.Min(values))
		}
		return stat.GeometricMean(values, nil), nil
	case AggHarmonicMean:
		if floats.Min(values) <= 0 {
			return 0, fmt.Errorf("harmonic mean needs positive values, got %g", floats.Min(values))
		}
		return stat.HarmonicMean(values, nil), nil
	case AggMin:
		return floats.Min(values), nil
	case AggMax:
		return floats.Max(values), nil
	default:
		return 0, fmt.Errorf("unsupported aggregation %q", agg)
	}
}

// Summarize computes every WorkloadStats field over perfs.
func Summarize(perfs []float64) (v1alpha1.WorkloadStats, error) {
	stats := v1alpha1.WorkloadStats{Apps: len(perfs)}
	for _, f := range []struct {
		agg AggregationType
		dst *float64
	}{
		{AggMean, &stats.Mean},
		{AggStdDev, &stats.StdDev},
		{AggGeoMean, &stats.GeoMean},
		{AggHarmonicMean, &stats.HarmonicMean},
		{AggMin, &stats.Min},
		{AggMax, &stats.Max},
	} {
		v, err := Aggregate(perfs, f.agg)
		if err != nil {
			return v1alpha1.WorkloadStats{}, err
		}
		if math.IsNaN(v) {
			return v1alpha1.WorkloadStats{}, fmt.Errorf("%s of workload speedups is NaN", f.agg)
		}
		*f.dst = v
	}
	return stats, nil
}
