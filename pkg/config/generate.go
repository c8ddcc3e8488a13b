package config

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// CoverageDistribution selects how the total kernel coverage of a generated
// application is drawn.
type CoverageDistribution string

const (
	CoverageNormal    CoverageDistribution = "normal"
	CoverageLogNormal CoverageDistribution = "lognormal"
	CoverageUniform   CoverageDistribution = "uniform"
	// CoverageFixed gives every application the same total coverage.
	CoverageFixed CoverageDistribution = "fixed"
)

// maxDraws bounds resampling of coverages outside [0,1].
const maxDraws = 1000

// ErrNoCoverage is returned when the distribution never yields a coverage in [0,1].
var ErrNoCoverage = errors.New("coverage distribution yields no value in [0,1]")

// GeneratorSpec parameterizes GenerateWorkload.
type GeneratorSpec struct {
	// Apps is the number of candidate applications. Candidates that draw no
	// kernel are dropped, so the workload may be shorter.
	Apps int `yaml:"apps" json:"apps"`

	Distribution CoverageDistribution `yaml:"distribution" json:"distribution"`

	// Param1 and Param2 are the mean and standard deviation for normal and
	// lognormal, the bounds for uniform. Fixed uses Param1 as the coverage.
	Param1 float64 `yaml:"param1" json:"param1"`
	Param2 float64 `yaml:"param2,omitempty" json:"param2,omitempty"`

	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Validate checks the generator parameters.
func (g GeneratorSpec) Validate() error {
	if g.Apps < 1 {
		return fmt.Errorf("apps must be positive, got %d", g.Apps)
	}
	switch g.Distribution {
	case CoverageNormal, CoverageLogNormal:
		if !(g.Param2 > 0) {
			return fmt.Errorf("%s coverage needs a positive standard deviation, got %g", g.Distribution, g.Param2)
		}
	case CoverageUniform:
		if !(g.Param1 < g.Param2) {
			return fmt.Errorf("uniform coverage needs param1 < param2, got [%g, %g]", g.Param1, g.Param2)
		}
	case CoverageFixed:
		if g.Param1 < 0 || g.Param1 > 1 {
			return fmt.Errorf("fixed coverage must be between 0 and 1, got %g", g.Param1)
		}
	default:
		return fmt.Errorf("unsupported coverage distribution %q", g.Distribution)
	}
	return nil
}

type sampler interface {
	Rand() float64
}

func (g GeneratorSpec) sampler(src rand.Source) sampler {
	switch g.Distribution {
	case CoverageNormal:
		return distuv.Normal{Mu: g.Param1, Sigma: g.Param2, Src: src}
	case CoverageLogNormal:
		return distuv.LogNormal{Mu: g.Param1, Sigma: g.Param2, Src: src}
	case CoverageUniform:
		return distuv.Uniform{Min: g.Param1, Max: g.Param2, Src: src}
	}
	return fixed(g.Param1)
}

type fixed float64

func (f fixed) Rand() float64 { return float64(f) }

// GenerateWorkload builds a synthetic workload from suite. Each kernel joins
// a candidate application with its Occur probability. The total coverage of
// an application is split among its kernels so that rarer kernels take the
// larger shares. Generated applications are fully parallel.
func GenerateWorkload(suite SuiteSpec, gen GeneratorSpec) (WorkloadSpec, error) {
	if err := suite.Validate(); err != nil {
		return WorkloadSpec{}, err
	}
	if err := gen.Validate(); err != nil {
		return WorkloadSpec{}, err
	}
	src := rand.NewPCG(gen.Seed, gen.Seed^0x9e3779b97f4a7c15)
	cov := gen.sampler(src)

	// kernels ordered by occurrence, names break ties
	kernels := slices.Clone(suite.Kernels)
	slices.SortStableFunc(kernels, func(a, b KernelSpec) int {
		return cmp.Or(cmp.Compare(a.Occur, b.Occur), cmp.Compare(a.Name, b.Name))
	})
	occur := make([]distuv.Bernoulli, len(kernels))
	for i, k := range kernels {
		occur[i] = distuv.Bernoulli{P: k.Occur, Src: src}
	}

	var w WorkloadSpec
	for range gen.Apps {
		var present []KernelSpec
		for i, k := range kernels {
			if occur[i].Rand() == 1 {
				present = append(present, k)
			}
		}
		if len(present) == 0 {
			continue
		}
		total, err := draw(cov)
		if err != nil {
			return WorkloadSpec{}, err
		}
		psum := 0.0
		for _, k := range present {
			psum += k.Occur
		}
		app := ApplicationSpec{
			Name:    fmt.Sprintf("app%d", len(w.Applications)),
			F:       1,
			Kernels: make(map[string]float64, len(present)),
		}
		for i, k := range present {
			// pair the i-th rarest kernel with the i-th most common probability
			share := present[len(present)-1-i].Occur / psum
			app.Kernels[k.Name] = total * share
		}
		w.Applications = append(w.Applications, app)
	}
	return w, nil
}

func draw(s sampler) (float64, error) {
	for range maxDraws {
		if v := s.Rand(); v >= 0 && v <= 1 {
			return v, nil
		}
	}
	return 0, ErrNoCoverage
}
